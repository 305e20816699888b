// Package sqlite stores the users document and session pointer in a local
// SQLite database through gorm. The driver is pure Go, so no cgo is needed.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/ecostep/ecostep/internal/model"
	"github.com/ecostep/ecostep/internal/repository"
)

var _ repository.Store = (*Client)(nil)

// Entry is a single key-value row.
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName pins the table name shared with the PostgreSQL backend.
func (Entry) TableName() string { return "kv_entries" }

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New opens (or creates) the database file and migrates the schema.
func New(dbpath string) (*Client, error) {
	db, err := gorm.Open(sqlite.Open(dbpath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Client{db: db}, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *Client) get(ctx context.Context, key string) (string, error) {
	var entries []Entry
	res := c.db.WithContext(ctx).Where(&Entry{Key: key}).Limit(1).Find(&entries)
	if res.Error != nil {
		return "", res.Error
	}
	if len(entries) == 0 {
		return "", nil
	}
	return entries[0].Value, nil
}

func (c *Client) put(ctx context.Context, key, value string) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&e).Error
}

// LoadUsers reads and decodes the users document.
func (c *Client) LoadUsers(ctx context.Context) ([]model.User, error) {
	v, err := c.get(ctx, repository.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return repository.DecodeUsers([]byte(v))
}

// SaveUsers upserts the users document.
func (c *Client) SaveUsers(ctx context.Context, users []model.User) error {
	b, err := repository.EncodeUsers(users)
	if err != nil {
		return err
	}
	if err := c.put(ctx, repository.KeyUsers, string(b)); err != nil {
		return fmt.Errorf("upsert users: %w", err)
	}
	return nil
}

// Session reads the session pointer.
func (c *Client) Session(ctx context.Context) (string, error) {
	v, err := c.get(ctx, repository.KeySession)
	if err != nil {
		return "", fmt.Errorf("select session: %w", err)
	}
	return v, nil
}

// SetSession upserts the session pointer.
func (c *Client) SetSession(ctx context.Context, email string) error {
	if err := c.put(ctx, repository.KeySession, email); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}
