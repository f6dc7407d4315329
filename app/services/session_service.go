package services

import (
	"errors"
	"fmt"
	"strings"

	"RetailPOS/app/database"
	"RetailPOS/app/models"
	"RetailPOS/app/security"
)

var (
	// ErrInvalidCredentials is returned when a shopper login does not match
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email that already has an account
	ErrEmailTaken = errors.New("email already registered")
)

// StaffUser returns the logged in staff member, or nil
func (s *Store) StaffUser() *models.StaffUser {
	if s.staffUser == nil {
		return nil
	}
	u := *s.staffUser
	return &u
}

// LoginStaff opens the staff session. An empty role means sales and an
// empty currency means the settings currency.
func (s *Store) LoginStaff(name string, role models.Role, currency string) (models.StaffUser, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.StaffUser{}, fmt.Errorf("%w: name", models.ErrMissingField)
	}
	if role == "" {
		role = models.RoleSales
	}
	if !role.Valid() {
		return models.StaffUser{}, fmt.Errorf("%w: unknown role %q", models.ErrInvalidValue, role)
	}
	if currency == "" {
		currency = s.settings.Currency
	}

	user := models.StaffUser{Name: name, Role: role, Currency: currency, IsLoggedIn: true}
	return user, s.commit(stage(&s.staffUser, database.KeyStaffSession, &user, "set", ""))
}

// LogoutStaff clears the staff session
func (s *Store) LogoutStaff() error {
	return s.commit(stage(&s.staffUser, database.KeyStaffSession, nil, "clear", ""))
}

// Shopper returns the logged in storefront customer, or nil
func (s *Store) Shopper() *models.Customer {
	if s.shopper == nil {
		return nil
	}
	c := *s.shopper
	return &c
}

// RegisterShopper creates a customer account from the storefront and logs
// it in. The password is stored as a bcrypt hash.
func (s *Store) RegisterShopper(draft models.CustomerDraft) (models.Customer, error) {
	c, err := draft.Build(s.now())
	if err != nil {
		return models.Customer{}, err
	}
	if c.Email == "" {
		return models.Customer{}, fmt.Errorf("%w: email", models.ErrMissingField)
	}
	if draft.Password == "" {
		return models.Customer{}, fmt.Errorf("%w: password", models.ErrMissingField)
	}
	if _, taken := s.customerByEmail(c.Email); taken {
		return models.Customer{}, fmt.Errorf("%w: %s", ErrEmailTaken, c.Email)
	}

	c.Password, err = security.HashPassword(draft.Password)
	if err != nil {
		return models.Customer{}, err
	}
	c.ID = 0

	c, w := s.stageNewCustomer(c)
	if err := s.commit(w, s.stageShopper(&c)); err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

// LoginShopper opens the storefront session for the customer with the
// given email and password
func (s *Store) LoginShopper(email, password string) (models.Customer, error) {
	c, ok := s.customerByEmail(strings.ToLower(strings.TrimSpace(email)))
	if !ok || !security.CheckPassword(c.Password, password) {
		return models.Customer{}, ErrInvalidCredentials
	}
	return c, s.commit(s.stageShopper(&c))
}

// LogoutShopper clears the storefront session and empties the cart
func (s *Store) LogoutShopper() error {
	return s.commit(s.stageShopper(nil), s.stageClearCart())
}

func (s *Store) stageShopper(c *models.Customer) slotWrite {
	action := "set"
	if c == nil {
		action = "clear"
	}
	return stage(&s.shopper, database.KeyShopperSession, c, action, "")
}

// followShopper keeps the session copy in step with an edited customer record
func (s *Store) followShopper(c models.Customer) []slotWrite {
	if s.shopper == nil || s.shopper.ID != c.ID {
		return nil
	}
	return []slotWrite{s.stageShopper(&c)}
}

func (s *Store) customerByEmail(email string) (models.Customer, bool) {
	if email == "" {
		return models.Customer{}, false
	}
	for _, c := range s.customers {
		if strings.EqualFold(c.Email, email) {
			return c, true
		}
	}
	return models.Customer{}, false
}
