package database

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Key names one persisted slot. Each collection and each session lives under its own key.
type Key string

const (
	KeyProducts       Key = "products"
	KeyCustomers      Key = "customers"
	KeyStaff          Key = "staff"
	KeyRecipes        Key = "recipes"
	KeySales          Key = "sales"
	KeySettings       Key = "settings"
	KeyPlans          Key = "plans"
	KeyCart           Key = "cart"
	KeyStaffSession   Key = "staff-session"
	KeyShopperSession Key = "shopper-session"
)

// AllKeys lists every slot the store owns
var AllKeys = []Key{
	KeyProducts, KeyCustomers, KeyStaff, KeyRecipes, KeySales,
	KeySettings, KeyPlans, KeyCart, KeyStaffSession, KeyShopperSession,
}

// Port serializes values as JSON into a KV
type Port struct {
	kv  KV
	log *zap.Logger
}

// NewPort wraps kv. A nil logger discards warnings.
func NewPort(kv KV, log *zap.Logger) *Port {
	if log == nil {
		log = zap.NewNop()
	}
	return &Port{kv: kv, log: log}
}

// Has reports whether anything is stored under key
func (p *Port) Has(key Key) bool {
	_, ok, err := p.kv.Get(string(key))
	return err == nil && ok
}

// Close closes the underlying store
func (p *Port) Close() error {
	return p.kv.Close()
}

// Load returns the value stored under key, or def when the slot is empty,
// unreadable or holds data that does not decode into T. It never fails.
func Load[T any](p *Port, key Key, def T) T {
	raw, ok, err := p.kv.Get(string(key))
	if err != nil {
		p.log.Warn("Failed to read slot, using default", zap.String("key", string(key)), zap.Error(err))
		return def
	}
	if !ok {
		return def
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		p.log.Warn("Malformed slot data, using default", zap.String("key", string(key)), zap.Error(err))
		return def
	}
	return v
}

// Save overwrites the slot under key with the JSON form of value
func Save[T any](p *Port, key Key, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		p.log.Error("Failed to encode slot", zap.String("key", string(key)), zap.Error(err))
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := p.kv.Put(string(key), raw); err != nil {
		p.log.Error("Failed to persist slot", zap.String("key", string(key)), zap.Error(err))
		return err
	}
	return nil
}
