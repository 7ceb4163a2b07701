// Package database handles connections to the MySQL server hosting DataJoint schemas.
//
// It wraps GORM (with the MySQL driver) to build a DSN with timeouts from Config,
// verify the server with a ping, and expose small helpers shared by the callers:
// identifier quoting and schema inspection.
//
// # Connect
//
// Connect opens a connection without selecting a default database. A single server
// hosts many schemas, so every query names its table as `schema`.`table`
// (see QualifiedTable).
//
// # Schema Inspection
//
// GetTableColumns runs SHOW COLUMNS against a schema-qualified table. The preflight
// check uses it to confirm that an external store's side table has the expected
// `hash` column before a cleaning run touches the object store.
//
// # Usage
//
//	db, err := database.Connect(cfg)
//	if err != nil {
//	    return err
//	}
//	defer database.Close(db)
//
//	columns, err := database.GetTableColumns(ctx, db, "my_schema", "~external_store")
package database
