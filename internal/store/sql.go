// Package store provides document stores backing the catalog: an in-memory
// store and a SQL store built on gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flowr-app/flowr/internal/catalog"
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// document is one row of the documents table. ProductID and UserID are
// copied out of Data so equality queries on them can use an index.
type document struct {
	Collection string `gorm:"primaryKey;size:255"`
	ID         string `gorm:"primaryKey;size:255"`
	ProductID  string `gorm:"index;size:255"`
	UserID     string `gorm:"index;size:255"`
	Data       datatypes.JSONMap
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (document) TableName() string { return "documents" }

// promoted maps document fields to their indexed columns.
var promoted = map[string]string{
	"id":        "id",
	"productId": "product_id",
	"userId":    "user_id",
}

// SQL is a document store over a relational database.
type SQL struct {
	db  *gorm.DB
	log *zap.Logger
}

// OpenSQL connects to the database and migrates the documents table.
func OpenSQL(driver, dsn string, log *zap.Logger) (*SQL, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", driver, err)
	}
	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("migrating documents: %w", err)
	}

	log.Debug("document store ready", zap.String("driver", driver))
	return &SQL{db: db, log: log}, nil
}

// Close releases the underlying connection pool.
func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns one document.
func (s *SQL) Get(ctx context.Context, collection, id string) (catalog.Record, error) {
	var doc document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}
	return doc.record(), nil
}

// Query returns documents of a collection ordered by id. Equality on id,
// productId and userId runs in SQL; other clauses are applied in memory.
func (s *SQL) Query(ctx context.Context, collection string, where ...catalog.Where) ([]catalog.Record, error) {
	tx := s.db.WithContext(ctx).Where("collection = ?", collection)

	var rest []catalog.Where
	for _, w := range where {
		col, ok := promoted[w.Field]
		if ok && w.Op == catalog.OpEq {
			tx = tx.Where(col+" = ?", catalog.String(w.Value))
			continue
		}
		rest = append(rest, w)
	}

	var docs []document
	if err := tx.Order("id").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}

	out := make([]catalog.Record, 0, len(docs))
	for _, doc := range docs {
		rec := doc.record()
		if catalog.MatchesAll(rec, rest) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Put inserts or replaces a document.
func (s *SQL) Put(ctx context.Context, collection, id string, rec catalog.Record) error {
	doc := document{
		Collection: collection,
		ID:         id,
		ProductID:  strings.TrimSpace(catalog.String(rec["productId"])),
		UserID:     strings.TrimSpace(catalog.String(rec["userId"])),
		Data:       datatypes.JSONMap(rec),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"product_id", "user_id", "data", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document.
func (s *SQL) Delete(ctx context.Context, collection, id string) error {
	res := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&document{})
	if res.Error != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, catalog.ErrNotFound)
	}
	return nil
}

func (d document) record() catalog.Record {
	rec := catalog.Record{}
	for k, v := range d.Data {
		rec[k] = v
	}
	rec["id"] = d.ID
	return rec
}
