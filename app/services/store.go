package services

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"RetailPOS/app/database"
	"RetailPOS/app/models"

	"go.uber.org/zap"
)

// Change describes one write-through to persistence
type Change struct {
	Key    database.Key `json:"key"`
	Action string       `json:"action"` // "create", "update", "delete", "set", "clear"
	ID     string       `json:"id,omitempty"`
}

// StoreOptions holds the checkout policies and the clock
type StoreOptions struct {
	StrictStock   bool // Reject sales that would drive stock negative
	AccrueLoyalty bool // Credit sale totals to the named customer
	Now           func() time.Time
}

// Store owns every collection of the shop and writes each mutation through
// to the persistence port under the collection's own key.
//
// Store is not safe for concurrent use. Callers serialize access; the HTTP
// layer does so with a single mutex.
type Store struct {
	port *database.Port
	log  *zap.Logger
	opts StoreOptions

	products  []models.Product
	customers []models.Customer
	employees []models.Employee
	recipes   []models.Recipe
	sales     []models.Sale
	plans     []models.ProductionPlan
	settings  models.Settings
	cart      []models.CartItem

	staffUser *models.StaffUser
	shopper   *models.Customer

	listeners     []func(Change)
	saleListeners []func(models.Sale)
}

// NewStore loads every collection from port. Empty slots fall back to the
// starter data for products, recipes, staff and settings, and to empty
// collections for everything else.
func NewStore(port *database.Port, log *zap.Logger, opts StoreOptions) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		port: port,
		log:  log,
		opts: opts,

		products:  database.Load(port, database.KeyProducts, database.InitialProducts()),
		customers: database.Load(port, database.KeyCustomers, []models.Customer{}),
		employees: database.Load(port, database.KeyStaff, database.InitialEmployees()),
		recipes:   database.Load(port, database.KeyRecipes, database.InitialRecipes()),
		sales:     database.Load(port, database.KeySales, []models.Sale{}),
		plans:     database.Load(port, database.KeyPlans, []models.ProductionPlan{}),
		settings:  database.Load(port, database.KeySettings, database.InitialSettings()),
		cart:      database.Load(port, database.KeyCart, []models.CartItem{}),
		staffUser: database.Load[*models.StaffUser](port, database.KeyStaffSession, nil),
		shopper:   database.Load[*models.Customer](port, database.KeyShopperSession, nil),
	}

	log.Info("Store loaded",
		zap.Int("products", len(s.products)),
		zap.Int("customers", len(s.customers)),
		zap.Int("employees", len(s.employees)),
		zap.Int("sales", len(s.sales)),
		zap.Int("plans", len(s.plans)))
	return s
}

// OnChange registers fn to be called after every successful write-through
func (s *Store) OnChange(fn func(Change)) {
	s.listeners = append(s.listeners, fn)
}

// Options returns the policies the store was built with
func (s *Store) Options() StoreOptions {
	return s.opts
}

// SetStrictStock toggles rejection of over-sales
func (s *Store) SetStrictStock(strict bool) {
	s.opts.StrictStock = strict
}

// SetAccrueLoyalty toggles crediting sales to customers
func (s *Store) SetAccrueLoyalty(accrue bool) {
	s.opts.AccrueLoyalty = accrue
}

// Close closes the persistence port
func (s *Store) Close() error {
	return s.port.Close()
}

// slotWrite is one staged write of a batch. apply installs the new value
// in memory and only runs once every write of the batch reached the port.
type slotWrite struct {
	key    database.Key
	next   any
	prev   any
	apply  func()
	change Change
}

// stage prepares next to replace *slot under key
func stage[T any](slot *T, key database.Key, next T, action, id string) slotWrite {
	return slotWrite{
		key:    key,
		next:   next,
		prev:   *slot,
		apply:  func() { *slot = next },
		change: Change{Key: key, Action: action, ID: id},
	}
}

// commit writes every staged value through to the port, then installs them
// in memory and notifies listeners. When a write fails the slots already
// written are restored and memory is left untouched.
func (s *Store) commit(writes ...slotWrite) error {
	for i, w := range writes {
		if err := database.Save(s.port, w.key, w.next); err != nil {
			s.restore(writes[:i])
			return fmt.Errorf("failed to persist %s: %w", w.key, err)
		}
	}
	for _, w := range writes {
		w.apply()
	}
	for _, w := range writes {
		for _, fn := range s.listeners {
			fn(w.change)
		}
	}
	return nil
}

func (s *Store) restore(written []slotWrite) {
	for i := len(written) - 1; i >= 0; i-- {
		w := written[i]
		if err := database.Save(s.port, w.key, w.prev); err != nil {
			s.log.Error("Failed to restore slot after a partial write",
				zap.String("key", string(w.key)), zap.Error(err))
		}
	}
}

func (s *Store) now() time.Time {
	return s.opts.Now().UTC()
}

// Settings returns the business settings
func (s *Store) Settings() models.Settings {
	settings := s.settings
	settings.Currencies = slices.Clone(s.settings.Currencies)
	return settings
}

// UpdateSettings replaces the settings wholesale
func (s *Store) UpdateSettings(settings models.Settings) error {
	settings.Currencies = slices.Clone(settings.Currencies)
	return s.commit(stage(&s.settings, database.KeySettings, settings, "set", ""))
}

// nextID returns one more than the largest id in use
func nextID[T any](items []T, id func(T) int64) int64 {
	var highest int64
	for _, item := range items {
		if v := id(item); v > highest {
			highest = v
		}
	}
	return highest + 1
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
