package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"sponsorhub/db/migrations"
)

// ErrSchemaDirty is returned when a previous migration failed halfway and
// the schema needs manual repair before the service may start.
var ErrSchemaDirty = errors.New("schema is dirty")

// ErrSchemaAhead is returned when the database was migrated by a newer
// build. The schema is never migrated down.
var ErrSchemaAhead = errors.New("schema is newer than this build")

// SchemaChange reports the versions before and after Migrate. From is zero
// for a fresh database.
type SchemaChange struct {
	From, To uint
}

// Applied reports whether any migration ran.
func (c SchemaChange) Applied() bool { return c.From != c.To }

// schema is the part of *migrate.Migrate that upgrade drives.
type schema interface {
	Version() (version uint, dirty bool, err error)
	Migrate(version uint) error
}

// Migrate upgrades the database at addr to migrations.Version using the
// embedded SQL files.
func Migrate(addr string) (SchemaChange, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return SchemaChange{}, fmt.Errorf("open embedded migrations: %w", err)
	}
	defer src.Close()

	mg, err := migrate.NewWithSourceInstance("iofs", src, addr)
	if err != nil {
		return SchemaChange{}, fmt.Errorf("connect migrator: %w", err)
	}
	defer mg.Close()

	return upgrade(mg, migrations.Version)
}

func upgrade(s schema, target uint) (SchemaChange, error) {
	current, dirty, err := s.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		current = 0
	case err != nil:
		return SchemaChange{}, fmt.Errorf("read schema version: %w", err)
	case dirty:
		return SchemaChange{From: current, To: current}, fmt.Errorf("%w at version %d", ErrSchemaDirty, current)
	case current > target:
		return SchemaChange{From: current, To: current}, fmt.Errorf("%w: at %d, want %d", ErrSchemaAhead, current, target)
	case current == target:
		return SchemaChange{From: current, To: current}, nil
	}

	if err := s.Migrate(target); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return SchemaChange{From: current, To: current}, fmt.Errorf("migrate %d -> %d: %w", current, target, err)
	}
	return SchemaChange{From: current, To: target}, nil
}
