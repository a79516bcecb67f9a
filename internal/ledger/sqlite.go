package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/tcfw/agritrace/pkg/ledger"
)

var (
	_ ledger.Ledger   = (*SqliteStore)(nil)
	_ ledger.Iterable = (*SqliteStore)(nil)
)

type entryRow struct {
	LedgerKey string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

func (entryRow) TableName() string { return "ledger_entries" }

// SqliteStore keeps world state in a single sqlite table. Each Update is
// one SQL transaction, and only one runs at a time.
type SqliteStore struct {
	db   *gorm.DB
	txMu sync.Mutex
}

func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite ledger")
	}

	if err := db.AutoMigrate(&entryRow{}); err != nil {
		return nil, errors.Wrap(err, "migrating ledger table")
	}

	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (s *SqliteStore) Get(ctx context.Context, key string) ([]byte, error) {
	return sqlGet(s.db.WithContext(ctx), key)
}

func (s *SqliteStore) Put(ctx context.Context, key string, value []byte) error {
	return sqlPut(s.db.WithContext(ctx), key, value)
}

func (s *SqliteStore) Delete(ctx context.Context, key string) error {
	return sqlDelete(s.db.WithContext(ctx), key)
}

func (s *SqliteStore) Update(ctx context.Context, fn func(ledger.Txn) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := &sqlTxn{tx: tx}
		defer func() { t.closed = true }()

		return fn(t)
	})
}

func (s *SqliteStore) View(ctx context.Context, fn func(ledger.Txn) error) error {
	return fn(&sqlTxn{tx: s.db.WithContext(ctx), readOnly: true})
}

func (s *SqliteStore) ForEach(ctx context.Context, fn func(string, []byte) error) error {
	rows, err := s.db.WithContext(ctx).Model(&entryRow{}).Order("ledger_key asc").Rows()
	if err != nil {
		return errors.Wrap(err, "listing ledger entries")
	}
	defer rows.Close()

	for rows.Next() {
		e := entryRow{}
		if err := s.db.ScanRows(rows, &e); err != nil {
			return errors.Wrap(err, "scanning ledger entry")
		}

		if err := fn(e.LedgerKey, e.Value); err != nil {
			return err
		}
	}

	return rows.Err()
}

func sqlGet(db *gorm.DB, key string) ([]byte, error) {
	e := entryRow{}
	err := db.Where("ledger_key = ?", key).Take(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrNotFound
		}
		return nil, errors.Wrap(err, "getting ledger entry")
	}

	if len(e.Value) == 0 {
		return nil, ledger.ErrNotFound
	}

	return e.Value, nil
}

func sqlPut(db *gorm.DB, key string, value []byte) error {
	e := entryRow{LedgerKey: key, Value: value, UpdatedAt: time.Now()}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ledger_key"}},
		UpdateAll: true,
	}).Create(&e).Error; err != nil {
		return errors.Wrap(err, "storing ledger entry")
	}

	return nil
}

func sqlDelete(db *gorm.DB, key string) error {
	if err := db.Where("ledger_key = ?", key).Delete(&entryRow{}).Error; err != nil {
		return errors.Wrap(err, "deleting ledger entry")
	}

	return nil
}

type sqlTxn struct {
	tx       *gorm.DB
	readOnly bool
	closed   bool
}

func (t *sqlTxn) Get(_ context.Context, key string) ([]byte, error) {
	if t.closed {
		return nil, ledger.ErrTxnClosed
	}

	return sqlGet(t.tx, key)
}

func (t *sqlTxn) Put(_ context.Context, key string, value []byte) error {
	if err := t.writable(); err != nil {
		return err
	}

	return sqlPut(t.tx, key, value)
}

func (t *sqlTxn) Delete(_ context.Context, key string) error {
	if err := t.writable(); err != nil {
		return err
	}

	return sqlDelete(t.tx, key)
}

func (t *sqlTxn) writable() error {
	if t.closed {
		return ledger.ErrTxnClosed
	}
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	return nil
}
