package cleaner

import (
	"context"
	"fmt"

	"dj-cleaner/core/database"
	"dj-cleaner/core/identity"
	"dj-cleaner/core/reconcile"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConnectFunc opens a database connection for the given parameters.
type ConnectFunc func(cfg database.Config) (*gorm.DB, error)

// DatabaseGateway reads external store identifiers from MySQL through GORM.
// It implements reconcile.DatabaseGateway.
type DatabaseGateway struct {
	connect ConnectFunc
	log     *zap.Logger

	cfg *database.Config
	db  *gorm.DB
}

var _ reconcile.DatabaseGateway = (*DatabaseGateway)(nil)

// NewDatabaseGateway creates an unconfigured gateway. connect is usually database.Connect.
func NewDatabaseGateway(connect ConnectFunc, log *zap.Logger) *DatabaseGateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &DatabaseGateway{connect: connect, log: log}
}

// Configure sets the connection parameters. An open connection is kept when the
// parameters are unchanged and closed otherwise.
func (g *DatabaseGateway) Configure(cfg database.Config) {
	if g.cfg != nil && *g.cfg == cfg {
		return
	}
	if g.db != nil {
		if err := database.Close(g.db); err != nil {
			g.log.Debug("Failed to close previous database connection", zap.Error(err))
		}
		g.db = nil
	}
	g.cfg = &cfg
}

func (g *DatabaseGateway) conn() (*gorm.DB, error) {
	if g.cfg == nil {
		return nil, reconcile.ErrNotConfigured
	}
	if g.db == nil {
		db, err := g.connect(*g.cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: database %s:%d: %w", reconcile.ErrConnection, g.cfg.Host, g.cfg.Port, err)
		}
		g.log.Debug("Connected to database", zap.String("host", g.cfg.Host), zap.Int("port", g.cfg.Port))
		g.db = db
	}
	return g.db, nil
}

// GetIDs returns the identifiers in the `hash` column of the location's side table.
func (g *DatabaseGateway) GetIDs(ctx context.Context, loc reconcile.DatabaseLocation) (identity.Set, error) {
	db, err := g.conn()
	if err != nil {
		return nil, err
	}

	table := database.QualifiedTable(loc.Schema, loc.TableName())
	rows, err := db.WithContext(ctx).Raw("SELECT `hash` FROM " + table).Rows()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrQuery, err)
	}
	defer rows.Close()

	ids := identity.NewSet()
	for rows.Next() {
		var hash []byte
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("%w: %w", reconcile.ErrQuery, err)
		}
		// A corrupt row means the table cannot be trusted; never skip it
		id, err := identity.FromBytes(hash)
		if err != nil {
			return nil, fmt.Errorf("row in %s: %w", table, err)
		}
		ids.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrQuery, err)
	}

	return ids, nil
}

// Close releases the underlying connection, if any.
func (g *DatabaseGateway) Close() error {
	if g.db == nil {
		return nil
	}
	err := database.Close(g.db)
	g.db = nil
	return err
}
