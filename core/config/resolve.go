package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"dj-cleaner/core/database"
	"dj-cleaner/core/storage"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRun is returned when a cleaning run cannot be resolved against the
// configured servers.
var ErrInvalidRun = errors.New("invalid cleaning run")

// SupportedStorageKinds lists the storage kinds backed by the MinIO client.
var SupportedStorageKinds = []string{"minio", "s3"}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func runValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("storage_ref", func(fl validator.FieldLevel) bool {
			_, _, ok := SplitStorageRef(fl.Field().String())
			return ok
		})
	})
	return validate
}

// SplitStorageRef splits a "<kind>.<name>" storage server reference.
// References with more than two parts are malformed.
func SplitStorageRef(ref string) (kind, name string, ok bool) {
	kind, name, ok = strings.Cut(ref, ".")
	if !ok || kind == "" || name == "" || strings.Contains(name, ".") {
		return "", "", false
	}
	return kind, name, true
}

// Validate checks that the run's fields are present and well formed.
func (r RunConfig) Validate() error {
	if err := runValidator().Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: invalid fields: %s", ErrInvalidRun, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRun, err)
	}
	return nil
}

// ResolvedRun is a cleaning run with its server references replaced by connection parameters.
type ResolvedRun struct {
	RunConfig
	Database database.Config
	Storage  storage.Config
}

// Resolve validates run and looks up the servers it references.
// Server names are matched case-insensitively since the config loader lowercases keys.
func (c *Config) Resolve(run RunConfig) (ResolvedRun, error) {
	if err := run.Validate(); err != nil {
		return ResolvedRun{}, err
	}

	dbCfg, ok := c.DatabaseServers[strings.ToLower(run.DatabaseServer)]
	if !ok {
		return ResolvedRun{}, fmt.Errorf("%w: unknown database server %q", ErrInvalidRun, run.DatabaseServer)
	}

	kind, name, _ := SplitStorageRef(run.StorageServer)
	kind, name = strings.ToLower(kind), strings.ToLower(name)
	if !isSupportedKind(kind) {
		return ResolvedRun{}, fmt.Errorf("%w: unsupported storage kind %q (supported: %s)",
			ErrInvalidRun, kind, strings.Join(SupportedStorageKinds, ", "))
	}
	storageCfg, ok := c.StorageServers[kind][name]
	if !ok {
		return ResolvedRun{}, fmt.Errorf("%w: unknown storage server %q", ErrInvalidRun, run.StorageServer)
	}

	return ResolvedRun{
		RunConfig: run,
		Database:  dbCfg,
		Storage:   storageCfg,
	}, nil
}

func isSupportedKind(kind string) bool {
	for _, k := range SupportedStorageKinds {
		if k == kind {
			return true
		}
	}
	return false
}
