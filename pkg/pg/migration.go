package pg

import (
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/duitapp/ledger/pkg/logger"
)

// Migrate applies the goose SQL migrations in dir against the write
// database. Called from the cli binary before serving traffic.
func Migrate(cfg Config, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatal(err)
	}

	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = goose.Up(db, dir); err != nil {
		logger.Fatal(err)
	}

	return nil
}
