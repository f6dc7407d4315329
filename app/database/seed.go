package database

import (
	"slices"

	"RetailPOS/app/config"
	"RetailPOS/app/models"
)

func linked(id int64) *int64 {
	return &id
}

// InitialProducts returns the starter catalog
func InitialProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Fried Pork (kg)", Category: "Cooked", Price: 450, Stock: 50, Unit: "kg", Icon: "🍖", Barcode: "885001"},
		{ID: 2, Name: "Grilled Pork (kg)", Category: "Cooked", Price: 520, Stock: 30, Unit: "kg", Icon: "🔥", Barcode: "885002"},
		{ID: 3, Name: "Roasted Pork (kg)", Category: "Cooked", Price: 580, Stock: 25, Unit: "kg", Icon: "🍗", Barcode: "885003"},
		{ID: 4, Name: "Pork Adobo (kg)", Category: "Cooked", Price: 650, Stock: 20, Unit: "kg", Icon: "🥘", Barcode: "885004"},
		{ID: 5, Name: "Ground Pork (kg)", Category: "Fresh", Price: 380, Stock: 15, Unit: "kg", Icon: "🌪️", Barcode: "885005"},
		{ID: 6, Name: "Pork Belly (kg)", Category: "Fresh", Price: 420, Stock: 12, Unit: "kg", Icon: "🥩", Barcode: "885006"},
		{ID: 7, Name: "Pork Chops (kg)", Category: "Fresh", Price: 480, Stock: 8, Unit: "kg", Icon: "🥩", Barcode: "885007"},
		{ID: 8, Name: "Chicken Breast (kg)", Category: "Fresh", Price: 320, Stock: 35, Unit: "kg", Icon: "🐔", Barcode: "885008"},
	}
}

// InitialRecipes returns the four house recipes, each producing one cooked product
func InitialRecipes() []models.Recipe {
	recipes := []models.Recipe{
		models.NewRecipe("no1", "Recipe No 1", 20, 3),
		models.NewRecipe("no2", "Recipe No 2", 20, 5),
		models.NewRecipe("no3", "Recipe No 3", 20, 9),
		models.NewRecipe("no4", "Recipe No 4", 20, 14),
	}
	for i := range recipes {
		recipes[i].LinkedProductID = linked(int64(i + 1))
	}
	return recipes
}

// InitialEmployees returns the starter roster
func InitialEmployees() []models.Employee {
	return []models.Employee{
		{ID: 1, Name: "Maria Santos", Role: models.RoleManager, Salary: 15000, Status: models.StatusActive, HireDate: "2023-01-15"},
		{ID: 2, Name: "Juan Dela Cruz", Role: models.RoleSales, Salary: 12000, Status: models.StatusActive, HireDate: "2023-03-10"},
		{ID: 3, Name: "Anna Garcia", Role: models.RoleChef, Salary: 13000, Status: models.StatusOnLeave, HireDate: "2023-06-20"},
	}
}

// InitialSettings returns the default business settings
func InitialSettings() models.Settings {
	return models.Settings{
		BusinessName:  "Pork Shop Premium",
		Currency:      "฿",
		TaxRate:       0.07,
		LowStockLevel: 10,
		AllowCrypto:   false,
		Currencies:    []string{"฿", "$", "€", "£"},
	}
}

// SeedInitialData writes the starter data into every seeded slot that is
// still empty. Slots that already hold data are left alone, so edits and
// deletions made by the shop survive restarts. The business name and
// currency from the config file replace the defaults when set.
func SeedInitialData(p *Port, business config.BusinessConfig) error {
	if !p.Has(KeyProducts) {
		if err := Save(p, KeyProducts, InitialProducts()); err != nil {
			return err
		}
	}
	if !p.Has(KeyRecipes) {
		if err := Save(p, KeyRecipes, InitialRecipes()); err != nil {
			return err
		}
	}
	if !p.Has(KeyStaff) {
		if err := Save(p, KeyStaff, InitialEmployees()); err != nil {
			return err
		}
	}
	if !p.Has(KeySettings) {
		settings := InitialSettings()
		if business.Name != "" {
			settings.BusinessName = business.Name
		}
		if business.Currency != "" {
			settings.Currency = business.Currency
			if !slices.Contains(settings.Currencies, business.Currency) {
				settings.Currencies = append(settings.Currencies, business.Currency)
			}
		}
		if err := Save(p, KeySettings, settings); err != nil {
			return err
		}
	}
	return nil
}
