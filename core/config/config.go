package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"dj-cleaner/core/database"
	"dj-cleaner/core/logger"
	"dj-cleaner/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultFile is the configuration file used when none is given.
const DefaultFile = "datajoint-cleaner.toml"

// Config holds all configuration for the cleaner.
type Config struct {
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// DatabaseServers maps a server name to its connection parameters.
	DatabaseServers map[string]database.Config `mapstructure:"database_servers"`
	// StorageServers maps a storage kind (e.g. "minio") and a server name to its connection parameters.
	StorageServers map[string]map[string]storage.Config `mapstructure:"storage_servers"`
	// CleaningRuns lists the runs to execute, in order.
	CleaningRuns []RunConfig `mapstructure:"cleaning_runs"`
}

// RunConfig describes one cleaning run.
type RunConfig struct {
	// Name is an optional label used in logs and reports.
	Name string `mapstructure:"name"`
	// DatabaseServer names an entry of DatabaseServers.
	DatabaseServer string `mapstructure:"database_server" validate:"required"`
	// StorageServer references an entry of StorageServers as "<kind>.<name>".
	StorageServer string `mapstructure:"storage_server" validate:"required,storage_ref"`
	// Schema is the DataJoint schema (MySQL database) name.
	Schema string `mapstructure:"schema" validate:"required"`
	// Store is the DataJoint external store name.
	Store string `mapstructure:"store" validate:"required"`
	// Bucket is the bucket holding the store's objects.
	Bucket string `mapstructure:"bucket" validate:"required"`
	// Location is the path prefix of the store inside the bucket.
	Location string `mapstructure:"location" validate:"required"`
}

// Label returns the run name, or the schema/store pair when no name is set.
func (r RunConfig) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Schema + "/" + r.Store
}

// LoadConfig loads configuration from the TOML file at path, a .env file next to
// it, and environment variables.
func LoadConfig(path string) (*Config, error) {
	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(filepath.Join(filepath.Dir(path), ".env"))

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	bindValues(v, Config{}, "")
	bindServers(v)

	// Map environment variables to nested keys (e.g. DATABASE_SERVERS_MAIN_PASSWORD)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unknown keys are rejected so that a misspelled setting cannot silently fall back to its default
	var file fileConfig
	if err := v.UnmarshalExact(&file); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return file.toConfig(), nil
}

// storageServer is a storage server entry as written in the file. Secure is the TLS key
// of the first dj-cleaner configuration format and is honoured alongside use_ssl.
type storageServer struct {
	storage.Config `mapstructure:",squash"`
	Secure         *bool `mapstructure:"secure"`
}

// fileConfig mirrors Config with the on-disk storage server entries.
type fileConfig struct {
	Log             logger.Config                       `mapstructure:"log"`
	DatabaseServers map[string]database.Config          `mapstructure:"database_servers"`
	StorageServers  map[string]map[string]storageServer `mapstructure:"storage_servers"`
	CleaningRuns    []RunConfig                         `mapstructure:"cleaning_runs"`
}

func (f fileConfig) toConfig() *Config {
	servers := make(map[string]map[string]storage.Config, len(f.StorageServers))
	for kind, named := range f.StorageServers {
		servers[kind] = make(map[string]storage.Config, len(named))
		for name, s := range named {
			cfg := s.Config
			if s.Secure != nil && *s.Secure {
				cfg.UseSSL = true
			}
			servers[kind][name] = cfg
		}
	}

	return &Config{
		Log:             f.Log,
		DatabaseServers: f.DatabaseServers,
		StorageServers:  servers,
		CleaningRuns:    f.CleaningRuns,
	}
}

// bindServers registers defaults for every named server found in the file, so that
// omitted fields fall back to their tags and each field can be overridden by env.
func bindServers(v *viper.Viper) {
	for name := range v.GetStringMap("database_servers") {
		bindValues(v, database.Config{}, "database_servers."+name)
	}
	for kind, servers := range v.GetStringMap("storage_servers") {
		named, ok := servers.(map[string]any)
		if !ok {
			continue
		}
		for name := range named {
			bindValues(v, storage.Config{}, "storage_servers."+kind+"."+name)
		}
	}
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Maps and slices come from the file only
		if field.Type.Kind() == reflect.Map || field.Type.Kind() == reflect.Slice {
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
