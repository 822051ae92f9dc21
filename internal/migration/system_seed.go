package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
)

type serviceSeed struct {
	ID    int64
	Type  string
	Name  string
	Price string
}

// Seed ids sit below the snowflake epoch range so they never collide with
// generated ids.
var defaultServices = []serviceSeed{
	{ID: 1001, Type: "acceptance_fee", Name: "Case Study Fee", Price: "50.00"},
	{ID: 2001, Type: "aligners_material", Name: "Standard PETG", Price: "15.00"},
	{ID: 2002, Type: "aligners_material", Name: "Premium TPU", Price: "25.00"},
	{ID: 3001, Type: "printing_method", Name: "Resin SLA", Price: "5.00"},
	{ID: 3002, Type: "printing_method", Name: "Thermoformed", Price: "3.00"},
}

func seedSystemImmutableData(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("system seed requires database handle")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin system seed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := seedServices(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit system seed transaction: %w", err)
	}
	return nil
}

// seedServices inserts the default pricing reference rows. Existing rows are
// left untouched so clinic edits to prices survive re-running migrate.
func seedServices(ctx context.Context, tx *sql.Tx) error {
	const stmt = `
		INSERT INTO services (id, type, code, name, price, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (code) DO NOTHING
	`

	for _, seed := range defaultServices {
		code := slug.Make(seed.Type + " " + seed.Name)
		if _, err := tx.ExecContext(ctx, stmt, seed.ID, seed.Type, code, seed.Name, seed.Price); err != nil {
			return fmt.Errorf("seed service %s: %w", code, err)
		}
	}
	return nil
}
