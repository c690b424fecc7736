package schemas

import "github.com/egimarket/reserve/lib/db"

const (
	reservationsSQL = `
CREATE TABLE IF NOT EXISTS reservations(
  token VARCHAR(256) NOT NULL,        -- token
  livemode BOOL NOT NULL,
  created TIMESTAMP NOT NULL,

  asset VARCHAR(256) NOT NULL,        -- external asset id
  wallet VARCHAR(256) NOT NULL,       -- claimant wallet
  kind VARCHAR(32) NOT NULL,          -- kind (strong, weak)

  amount VARCHAR(64) NOT NULL,        -- fiat-pegged offer amount
  token_amount VARCHAR(64) NOT NULL,  -- native token offer amount

  status VARCHAR(32) NOT NULL,        -- status (active, superseded, cancelled, expired)
  priority INT NOT NULL,              -- dense rank, 0 is current highest

  PRIMARY KEY(token)
);
`
)

func init() {
	db.RegisterSchema(
		"reserve",
		"reservations",
		reservationsSQL,
	)
}
