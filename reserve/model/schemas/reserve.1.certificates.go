package schemas

import "github.com/egimarket/reserve/lib/db"

const (
	certificatesSQL = `
CREATE TABLE IF NOT EXISTS certificates(
  uuid VARCHAR(36) NOT NULL,             -- public identifier, never reused
  livemode BOOL NOT NULL,
  created TIMESTAMP NOT NULL,            -- issuance time

  reservation VARCHAR(256) NOT NULL,     -- owning reservation token

  asset VARCHAR(256) NOT NULL,
  wallet VARCHAR(256) NOT NULL,
  kind VARCHAR(32) NOT NULL,
  amount VARCHAR(64) NOT NULL,
  token_amount VARCHAR(64) NOT NULL,
  reservation_created TIMESTAMP NOT NULL,

  signature VARCHAR(256) NOT NULL,       -- hex ed25519 over canonical fields

  PRIMARY KEY(uuid),
  UNIQUE(reservation)
);
`
)

func init() {
	db.RegisterSchema(
		"reserve",
		"certificates",
		certificatesSQL,
	)
}
