package schemas

import "github.com/egimarket/reserve/lib/db"

const (
	tasksSQL = `
CREATE TABLE IF NOT EXISTS tasks(
  token VARCHAR(256) NOT NULL,   -- token
  created TIMESTAMP NOT NULL,

  name VARCHAR(256) NOT NULL,    -- task name
  subject VARCHAR(256) NOT NULL, -- task subject (generally an object token)

  status VARCHAR(32) NOT NULL,   -- status (pending, succeeded, failed)
  retry INT NOT NULL,

  PRIMARY KEY(token)
);
`
)

func init() {
	db.RegisterSchema(
		"reserve",
		"tasks",
		tasksSQL,
	)
}
