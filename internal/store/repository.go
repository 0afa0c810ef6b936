package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/energyctl/internal/energymodel"
	"codeberg.org/mutker/energyctl/internal/errors"
	"codeberg.org/mutker/energyctl/internal/export"
	"codeberg.org/mutker/energyctl/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}
	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing domain repository at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	// Open database with pragmas for better performance and safety
	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Msg("Domain repository initialized")

	return &sqliteRepository{db: db}, nil
}

// SaveDomain stores one published domain and its capacity states in a single
// transaction. The unit set is the natural key: saving the same domain twice
// fails rather than silently duplicating rows.
func (r *sqliteRepository) SaveDomain(ctx context.Context, pd *energymodel.PerformanceDomain) error {
	errFactory := errors.New()

	if pd == nil || pd.NrStates() == 0 {
		return errFactory.New(ErrInvalidDomain)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	res, err := tx.ExecContext(ctx, insertDomainSQL,
		export.FormatUnits(pd.Units()), pd.NrStates(), time.Now().Unix())
	if err != nil {
		rollback(tx)
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	domainID, err := res.LastInsertId()
	if err != nil {
		rollback(tx)
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	for i, s := range pd.States() {
		_, err := tx.ExecContext(ctx, insertStateSQL,
			domainID, i, int64(s.Frequency), int64(s.Power), int64(s.Cost))
		if err != nil {
			rollback(tx)
			return errFactory.Wrap(ErrStorageAccess, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	logger.Debug().
		Str("units", export.FormatUnits(pd.Units())).
		Int("states", pd.NrStates()).
		Msg("Saved performance domain")

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	// Checkpoint WAL before closing
	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	logger.Debug().Msg("Domain repository closed")

	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Error().Err(err).Msg("Failed to roll back transaction")
	}
}
