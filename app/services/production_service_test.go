package services

import (
	"math/rand"
	"testing"
	"time"

	"RetailPOS/app/database"
	"RetailPOS/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRow(t *testing.T) {
	recipe := models.NewRecipe("no1", "Recipe No 1", 20, 3)

	row := ComputeRow(recipe, 46)
	assert.Equal(t, Row{Batches: 2, ChickenNeeded: 40, PorkNeeded: 6}, row)

	row = ComputeRow(recipe, 10)
	assert.InDelta(t, 10.0/23.0, row.Batches, 1e-12)
	assert.Equal(t, 9.0, row.ChickenNeeded) // 8.69 rounded up
	assert.Equal(t, 2.0, row.PorkNeeded)    // 1.30 rounded up

	assert.Equal(t, Row{}, ComputeRow(recipe, 0))
}

func TestComputeRowZeroTotalBase(t *testing.T) {
	recipe := models.Recipe{ID: "empty", BaseChicken: 5, BasePork: 0, TotalBase: 0}
	for _, qty := range []float64{0, 1, 46, 1e9} {
		assert.Equal(t, Row{}, ComputeRow(recipe, qty))
	}
	assert.Equal(t, Row{}, ComputeRow(models.Recipe{TotalBase: -4, BaseChicken: 1}, 10))
}

func TestAggregate(t *testing.T) {
	recipes := database.InitialRecipes()
	inputs := map[string]float64{"no1": 46, "no2": 50, "no4": 17}

	totals := Aggregate(recipes, inputs)

	assert.Equal(t, 113.0, totals.Orders)
	assert.InDelta(t, 2+2+0.5, totals.Batches, 1e-12)
	assert.Equal(t, 40.0+40+10, totals.Chicken)
	assert.Equal(t, 6.0+10+7, totals.Pork)
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	recipes := []models.Recipe{
		models.NewRecipe("a", "A", 20, 3),
		models.NewRecipe("b", "B", 0.1, 0.2),
		models.NewRecipe("c", "C", 7.7, 1.3),
		models.NewRecipe("d", "D", 20, 14),
		{ID: "z", Name: "Zero"},
	}
	inputs := map[string]float64{"a": 0.3, "b": 17.1, "c": 1e-3, "d": 123.456, "z": 5}

	want := Aggregate(recipes, inputs)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]models.Recipe(nil), recipes...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, Aggregate(shuffled, inputs))
	}
}

func TestPlanItems(t *testing.T) {
	recipes := database.InitialRecipes()
	items := PlanItems(recipes, map[string]float64{"no1": 46})

	require.Len(t, items, 4)
	assert.Equal(t, models.PlanItem{RecipeID: "no1", OrderQty: 46, Batches: 2, ChickenNeeded: 40, PorkNeeded: 6}, items[0])
	assert.Equal(t, models.PlanItem{RecipeID: "no2"}, items[1])
}

func saleAt(ts time.Time, items ...models.SaleItem) models.Sale {
	return models.Sale{ID: ts.String(), Timestamp: ts, Items: items}
}

func item(id int64, qty int) models.SaleItem {
	return models.SaleItem{Product: models.Product{ID: id}, Qty: qty}
}

func TestImportFromSales(t *testing.T) {
	recipes := database.InitialRecipes()
	recipes[3].LinkedProductID = nil

	sales := []models.Sale{
		saleAt(fixedNow.Add(-time.Hour), item(1, 2), item(2, 1)),
		saleAt(fixedNow.Add(time.Hour), item(1, 3), item(4, 9)),
		saleAt(fixedNow.AddDate(0, 0, -1), item(2, 50), item(3, 50)),
	}
	salesCopy := append([]models.Sale(nil), sales...)
	inputs := map[string]float64{"no1": 99, "no3": 12, "no4": 7}

	got, imported := ImportFromSales(recipes, sales, inputs, fixedNow)

	assert.Equal(t, 2, imported)
	assert.Equal(t, map[string]float64{"no1": 5, "no2": 1, "no3": 12, "no4": 7}, got)
	assert.Equal(t, map[string]float64{"no1": 99, "no3": 12, "no4": 7}, inputs, "inputs are not modified")
	assert.Equal(t, salesCopy, sales)
}

func TestImportFromSalesUsesLocalCalendarDate(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*3600)
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, bangkok)
	recipes := database.InitialRecipes()

	sales := []models.Sale{
		// 2024-06-14 18:30 UTC is 01:30 on the 15th in Bangkok
		saleAt(time.Date(2024, 6, 14, 18, 30, 0, 0, time.UTC), item(1, 4)),
		// 2024-06-14 16:00 UTC is 23:00 on the 14th in Bangkok
		saleAt(time.Date(2024, 6, 14, 16, 0, 0, 0, time.UTC), item(1, 10)),
	}

	got, imported := ImportFromSales(recipes, sales, nil, now)
	assert.Equal(t, 1, imported)
	assert.Equal(t, map[string]float64{"no1": 4}, got)
}

func TestSavePlanPrepends(t *testing.T) {
	now := fixedNow
	store, port := newTestStore(t, StoreOptions{Now: func() time.Time { return now }})

	first, err := store.SavePlan(models.PlanTotals{Orders: 1}, []models.PlanItem{{RecipeID: "no1", OrderQty: 1}})
	require.NoError(t, err)
	now = now.Add(time.Minute)
	second, err := store.SavePlan(models.PlanTotals{Orders: 2}, nil)
	require.NoError(t, err)

	plans := store.Plans()
	require.Len(t, plans, 2)
	assert.Equal(t, second.ID, plans[0].ID)
	assert.Equal(t, first.ID, plans[1].ID)
	assert.NotNil(t, plans[0].Items)
	assert.Equal(t, plans, database.Load(port, database.KeyPlans, []models.ProductionPlan(nil)))
}

func TestSavePlanFromInputs(t *testing.T) {
	store, _ := newTestStore(t, StoreOptions{})

	_, err := store.SavePlanFromInputs(map[string]float64{})
	assert.ErrorIs(t, err, ErrEmptyPlan)
	assert.Empty(t, store.Plans())

	plan, err := store.SavePlanFromInputs(map[string]float64{"no1": 46})
	require.NoError(t, err)
	assert.Equal(t, models.PlanTotals{Orders: 46, Batches: 2, Chicken: 40, Pork: 6}, plan.Totals)
	assert.Len(t, plan.Items, 4)
}

func TestImportTodaySalesFromStore(t *testing.T) {
	store, _ := newTestStore(t, StoreOptions{})

	_, err := store.FinalizeSale(SaleRequest{Items: []models.SaleItem{line(t, store, 2, 25)}})
	require.NoError(t, err)

	got, imported := store.ImportTodaySales(nil)
	assert.Equal(t, 1, imported)
	assert.Equal(t, map[string]float64{"no2": 25}, got)
}

func TestRecipeCRUDAndLink(t *testing.T) {
	store, port := newTestStore(t, StoreOptions{})

	r, err := store.AddRecipe(models.Recipe{ID: "no5", Name: "Recipe No 5", BaseChicken: 10, BasePork: 10, TotalBase: 1})
	require.NoError(t, err)
	assert.Equal(t, 20.0, r.TotalBase, "total base is derived")

	require.NoError(t, store.LinkRecipeProduct("no5", 6))
	got, ok := store.GetRecipe("no5")
	require.True(t, ok)
	assert.True(t, got.LinkedTo(6))

	got.BasePork = 30
	require.NoError(t, store.UpdateRecipe(got))
	got, _ = store.GetRecipe("no5")
	assert.Equal(t, 40.0, got.TotalBase)

	assert.Equal(t, store.Recipes(), database.Load(port, database.KeyRecipes, []models.Recipe(nil)))

	require.NoError(t, store.DeleteRecipe("no5"))
	assert.Len(t, store.Recipes(), 4)
}

func TestRecipeAndPlanReadersReturnCopies(t *testing.T) {
	store, _ := newTestStore(t, StoreOptions{})
	require.NoError(t, store.LinkRecipeProduct("no1", 3))
	_, err := store.SavePlan(models.PlanTotals{Orders: 4}, []models.PlanItem{{RecipeID: "no1", OrderQty: 4}})
	require.NoError(t, err)

	recipes := store.Recipes()
	require.NotNil(t, recipes[0].LinkedProductID)
	*recipes[0].LinkedProductID = 99
	r, _ := store.GetRecipe("no1")
	*r.LinkedProductID = 98

	plans := store.Plans()
	plans[0].Items[0].OrderQty = 1

	stored, ok := store.GetRecipe("no1")
	require.True(t, ok)
	assert.True(t, stored.LinkedTo(3))
	assert.Equal(t, 4.0, store.Plans()[0].Items[0].OrderQty)
}
