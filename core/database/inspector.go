package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // NULL default is possible
	Extra   string
}

// GetTableColumns retrieves the column definitions for a table inside schema.
// Field names and types are lowercased.
func GetTableColumns(ctx context.Context, db *gorm.DB, schema, table string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	err := db.WithContext(ctx).Raw("SHOW COLUMNS FROM " + QualifiedTable(schema, table)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s.%s: %w", schema, table, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// FindColumn returns the column named field, if present.
func FindColumn(columns []ColumnInfo, field string) (ColumnInfo, bool) {
	field = strings.ToLower(field)
	for _, col := range columns {
		if col.Field == field {
			return col, true
		}
	}
	return ColumnInfo{}, false
}
