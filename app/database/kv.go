package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KV is a durable string-keyed byte store. Each key holds one whole
// serialized collection.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Close() error
}

// Slot is one persisted key of the store
type Slot struct {
	Key       string    `gorm:"column:slot_key;primaryKey;size:64" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table name stable across drivers
func (Slot) TableName() string {
	return "kv_slots"
}

// GormKV stores slots in a relational database through gorm
type GormKV struct {
	db *gorm.DB
}

// NewGormKV migrates the slot table and wraps db
func NewGormKV(db *gorm.DB) (*GormKV, error) {
	if err := db.AutoMigrate(&Slot{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return &GormKV{db: db}, nil
}

// DB returns the underlying gorm handle
func (g *GormKV) DB() *gorm.DB {
	return g.db
}

// Get returns the value stored under key
func (g *GormKV) Get(key string) ([]byte, bool, error) {
	var slot Slot
	err := g.db.Where("slot_key = ?", key).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return []byte(slot.Value), true, nil
}

// Put overwrites the value stored under key
func (g *GormKV) Put(key string, value []byte) error {
	slot := Slot{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	err := g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection
func (g *GormKV) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MemoryKV keeps slots in memory. Used by tests and ephemeral runs.
type MemoryKV struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryKV returns an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{slots: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key
func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.slots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put stores a copy of value under key
func (m *MemoryKV) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = append([]byte(nil), value...)
	return nil
}

// Close is a no-op
func (m *MemoryKV) Close() error {
	return nil
}
