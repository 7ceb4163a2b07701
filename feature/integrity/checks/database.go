package checks

import (
	"context"
	"fmt"

	"dj-cleaner/core/database"

	"gorm.io/gorm"
)

// HashColumn is the side table column holding the raw object identifier.
const HashColumn = "hash"

// HashColumnType is the MySQL type DataJoint uses for HashColumn.
const HashColumnType = "binary(16)"

// CheckExternalTable verifies that the store's side table exists inside schema and
// has a hash column able to hold a 16-byte identifier.
// It returns a list of problems; an error means the check itself could not run.
func CheckExternalTable(ctx context.Context, db *gorm.DB, schema, store string) ([]string, error) {
	table := "~external_" + store

	columns, err := database.GetTableColumns(ctx, db, schema, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return []string{fmt.Sprintf("table %s.%s has no columns", schema, table)}, nil
	}

	col, ok := database.FindColumn(columns, HashColumn)
	if !ok {
		return []string{fmt.Sprintf("table %s.%s has no %s column", schema, table, HashColumn)}, nil
	}
	if col.Type != HashColumnType {
		return []string{fmt.Sprintf("column %s.%s.%s is %s, expected %s", schema, table, HashColumn, col.Type, HashColumnType)}, nil
	}

	return nil, nil
}
