// Package config provides configuration management for the cleaner.
//
// It utilizes Viper for loading configuration from a TOML file, an optional .env
// file placed next to it, and environment variables.
//
// # Configuration Structure
//
//   - Log: Logging level and format
//   - DatabaseServers: named MySQL servers ([database_servers.<name>])
//   - StorageServers: named object stores grouped by kind ([storage_servers.<kind>.<name>])
//   - CleaningRuns: ordered runs ([[cleaning_runs]]) referencing servers by name
//
// Omitted server fields fall back to the `default` struct tags, and every key can be
// overridden from the environment, e.g. DATABASE_SERVERS_MAIN_PASSWORD or LOG_LEVEL.
// Viper lowercases keys, so server names are case-insensitive. Unknown keys fail the
// load. Storage servers accept the older `secure` key as a synonym for use_ssl; TLS is
// enabled when either is true.
//
// # Usage
//
//	cfg, err := config.LoadConfig("datajoint-cleaner.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	run, err := cfg.Resolve(cfg.CleaningRuns[0])
package config
