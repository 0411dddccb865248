package db

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSchema struct {
	version  uint
	dirty    bool
	readErr  error
	applyErr error
	applied  []uint
}

func (f *fakeSchema) Version() (uint, bool, error) { return f.version, f.dirty, f.readErr }

func (f *fakeSchema) Migrate(v uint) error {
	f.applied = append(f.applied, v)
	return f.applyErr
}

func TestUpgrade(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		schema  fakeSchema
		want    SchemaChange
		wantErr error
		applied []uint
	}{
		{name: "fresh database", schema: fakeSchema{readErr: migrate.ErrNilVersion}, want: SchemaChange{From: 0, To: 3}, applied: []uint{3}},
		{name: "behind", schema: fakeSchema{version: 1}, want: SchemaChange{From: 1, To: 3}, applied: []uint{3}},
		{name: "up to date", schema: fakeSchema{version: 3}, want: SchemaChange{From: 3, To: 3}},
		{name: "no change reported", schema: fakeSchema{version: 2, applyErr: migrate.ErrNoChange}, want: SchemaChange{From: 2, To: 3}, applied: []uint{3}},
		{name: "dirty", schema: fakeSchema{version: 2, dirty: true}, want: SchemaChange{From: 2, To: 2}, wantErr: ErrSchemaDirty},
		{name: "ahead", schema: fakeSchema{version: 4}, want: SchemaChange{From: 4, To: 4}, wantErr: ErrSchemaAhead},
		{name: "read fails", schema: fakeSchema{readErr: boom}, wantErr: boom},
		{name: "apply fails", schema: fakeSchema{version: 1, applyErr: boom}, want: SchemaChange{From: 1, To: 1}, wantErr: boom, applied: []uint{3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.schema
			got, err := upgrade(&s, 3)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.applied, s.applied)
			assert.Equal(t, tc.want.From != tc.want.To, got.Applied())
		})
	}
}
