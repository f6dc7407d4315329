package services

import (
	"testing"

	"RetailPOS/app/database"
	"RetailPOS/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffSession(t *testing.T) {
	store, port := newTestStore(t, StoreOptions{})

	user, err := store.LoginStaff("  Maria ", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.StaffUser{Name: "Maria", Role: models.RoleSales, Currency: "฿", IsLoggedIn: true}, user)
	assert.Equal(t, &user, database.Load[*models.StaffUser](port, database.KeyStaffSession, nil))

	_, err = store.LoginStaff("", models.RoleManager, "$")
	assert.ErrorIs(t, err, models.ErrMissingField)

	_, err = store.LoginStaff("Juan", "janitor", "")
	assert.Error(t, err)

	require.NoError(t, store.LogoutStaff())
	assert.Nil(t, store.StaffUser())
	assert.Nil(t, database.Load[*models.StaffUser](port, database.KeyStaffSession, nil))
}

func TestShopperRegisterLoginLogout(t *testing.T) {
	store, port := newTestStore(t, StoreOptions{})

	c, err := store.RegisterShopper(models.CustomerDraft{Name: "Somchai", Email: "Somchai@Example.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "somchai@example.com", c.Email)
	assert.NotEqual(t, "hunter2", c.Password)
	assert.Equal(t, fixedNow, c.RegisteredDate)
	require.NotNil(t, store.Shopper())
	assert.Equal(t, c.ID, store.Shopper().ID)

	p, _ := store.GetProduct(1)
	require.NoError(t, store.AddToCart(p))
	require.NoError(t, store.LogoutShopper())
	assert.Nil(t, store.Shopper())
	assert.Empty(t, store.Cart(), "logout empties the cart")

	_, err = store.LoginShopper("somchai@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = store.LoginShopper("nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := store.LoginShopper(" SOMCHAI@example.com ", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, got.ID, database.Load[*models.Customer](port, database.KeyShopperSession, nil).ID)
}

func TestRegisterShopperValidation(t *testing.T) {
	store, _ := newTestStore(t, StoreOptions{})

	_, err := store.RegisterShopper(models.CustomerDraft{Name: "No Mail", Password: "x"})
	assert.ErrorIs(t, err, models.ErrMissingField)
	_, err = store.RegisterShopper(models.CustomerDraft{Name: "No Pass", Email: "a@b.c"})
	assert.ErrorIs(t, err, models.ErrMissingField)
	_, err = store.RegisterShopper(models.CustomerDraft{Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, models.ErrMissingField)

	_, err = store.RegisterShopper(models.CustomerDraft{Name: "First", Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	_, err = store.RegisterShopper(models.CustomerDraft{Name: "Second", Email: "A@B.C", Password: "y"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Len(t, store.Customers(), 1)
}

func TestShopperSessionFollowsCustomerEdits(t *testing.T) {
	store, _ := newTestStore(t, StoreOptions{})

	c, err := store.RegisterShopper(models.CustomerDraft{Name: "Lek", Email: "lek@example.com", Password: "pw"})
	require.NoError(t, err)

	c.Points = 3000
	c.Password = ""
	require.NoError(t, store.UpdateCustomer(c))

	assert.Equal(t, 3000, store.Shopper().Points)
	_, err = store.LoginShopper("lek@example.com", "pw")
	assert.NoError(t, err, "an empty password keeps the stored hash")
}

func TestDeleteCustomerEndsShopperSession(t *testing.T) {
	store, port := newTestStore(t, StoreOptions{})
	c, err := store.RegisterShopper(models.CustomerDraft{Name: "Lek", Email: "lek@example.com", Password: "pw"})
	require.NoError(t, err)
	pork, _ := store.GetProduct(1)
	require.NoError(t, store.AddToCart(pork))

	require.NoError(t, store.DeleteCustomer(c.ID))

	assert.Nil(t, store.Shopper())
	assert.Empty(t, store.Cart())
	assert.Nil(t, database.Load[*models.Customer](port, database.KeyShopperSession, &models.Customer{}))

	require.NoError(t, store.AddToCart(pork))
	sale, err := store.CheckoutCart()
	require.NoError(t, err)
	assert.Nil(t, sale.CustomerID)
	assert.Equal(t, GuestCustomer, sale.CustomerName)
}

func TestDeleteOtherCustomerKeepsShopperSession(t *testing.T) {
	store, _ := newTestStore(t, StoreOptions{})
	other, err := store.AddCustomer(models.Customer{Name: "Nok"})
	require.NoError(t, err)
	c, err := store.RegisterShopper(models.CustomerDraft{Name: "Lek", Email: "lek@example.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteCustomer(other.ID))

	require.NotNil(t, store.Shopper())
	assert.Equal(t, c.ID, store.Shopper().ID)
}
