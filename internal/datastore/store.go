package datastore

import (
	"fmt"
	"os"
	"sync"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store is the Persistent Store: the GORM/SQLite handle plus the
// in-memory aggregates (species set, species counts, log revision)
// that are maintained incrementally alongside the durable tables.
type Store struct {
	db     *gorm.DB
	dbPath string

	revMu    sync.Mutex
	revision int64

	aggMu         sync.Mutex
	speciesCounts map[string]int

	cacheMu sync.Mutex

	qcacheOnce sync.Once
	qcache     *queryCache
}

// Open creates/opens the SQLite database at dbPath with WAL journaling
// and NORMAL synchronous, matching the project's own recommended
// pragmas, and runs schema migration.
func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", dbPath)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).
			Context("path", dbPath).Build()
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-4000",
		"PRAGMA temp_store=MEMORY",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).
				Context("pragma", pragma).Build()
		}
	}

	if err := db.AutoMigrate(&Detection{}, &Event{}, &SpeciesIcon{}, &SummaryCacheRow{}); err != nil {
		return nil, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}

	st := &Store{db: db, dbPath: dbPath, speciesCounts: make(map[string]int)}
	if err := st.rebuildAggregates(); err != nil {
		return nil, err
	}
	return st, nil
}

// OpenMemory opens an in-memory database, used by tests.
func OpenMemory() (*Store, error) {
	return Open("file::memory:?cache=shared")
}

// CheckpointWAL forces all WAL frames into the main database file,
// called during orderly shutdown.
func (s *Store) CheckpointWAL() error {
	return s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
