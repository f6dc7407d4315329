package services

import (
	"errors"
	"maps"
	"math"
	"slices"
	"time"

	"RetailPOS/app/database"
	"RetailPOS/app/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrEmptyPlan is returned when saving a plan with no ordered quantity
var ErrEmptyPlan = errors.New("no orders entered")

// Row is the calculator output for one recipe
type Row struct {
	Batches       float64 `json:"batches"`
	ChickenNeeded float64 `json:"chicken_needed"`
	PorkNeeded    float64 `json:"pork_needed"`
}

// ComputeRow scales a recipe to an order quantity. Ingredient amounts are
// rounded up. A recipe without a positive total base yields zero batches.
func ComputeRow(recipe models.Recipe, orderQty float64) Row {
	if recipe.TotalBase <= 0 {
		return Row{}
	}
	batches := orderQty / recipe.TotalBase
	return Row{
		Batches:       batches,
		ChickenNeeded: math.Ceil(recipe.BaseChicken * batches),
		PorkNeeded:    math.Ceil(recipe.BasePork * batches),
	}
}

// Aggregate sums order quantities and computed rows over every recipe.
// Sums are accumulated in decimal so the result does not depend on recipe order.
func Aggregate(recipes []models.Recipe, orderQtyByRecipe map[string]float64) models.PlanTotals {
	orders, batches, chicken, pork := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range recipes {
		qty := orderQtyByRecipe[r.ID]
		row := ComputeRow(r, qty)
		orders = orders.Add(decimal.NewFromFloat(qty))
		batches = batches.Add(decimal.NewFromFloat(row.Batches))
		chicken = chicken.Add(decimal.NewFromFloat(row.ChickenNeeded))
		pork = pork.Add(decimal.NewFromFloat(row.PorkNeeded))
	}
	return models.PlanTotals{
		Orders:  orders.InexactFloat64(),
		Batches: batches.InexactFloat64(),
		Chicken: chicken.InexactFloat64(),
		Pork:    pork.InexactFloat64(),
	}
}

// PlanItems returns one plan row per recipe, in recipe order
func PlanItems(recipes []models.Recipe, orderQtyByRecipe map[string]float64) []models.PlanItem {
	items := make([]models.PlanItem, 0, len(recipes))
	for _, r := range recipes {
		qty := orderQtyByRecipe[r.ID]
		row := ComputeRow(r, qty)
		items = append(items, models.PlanItem{
			RecipeID:      r.ID,
			OrderQty:      qty,
			Batches:       row.Batches,
			ChickenNeeded: row.ChickenNeeded,
			PorkNeeded:    row.PorkNeeded,
		})
	}
	return items
}

// ImportFromSales fills order quantities from the sales made on now's
// calendar date. For every recipe linked to a product, the quantity of that
// product sold that day replaces the recipe's input. Recipes with nothing
// sold keep their input. Returns the new inputs and how many recipes were
// filled. Neither sales nor inputs are modified.
func ImportFromSales(recipes []models.Recipe, sales []models.Sale, inputs map[string]float64, now time.Time) (map[string]float64, int) {
	result := maps.Clone(inputs)
	if result == nil {
		result = map[string]float64{}
	}

	imported := 0
	for _, r := range recipes {
		if r.LinkedProductID == nil {
			continue
		}
		sold := 0
		for _, sale := range sales {
			if sameDate(sale.Timestamp, now) {
				sold += sale.QtyOf(*r.LinkedProductID)
			}
		}
		if sold > 0 {
			result[r.ID] = float64(sold)
			imported++
		}
	}
	return result, imported
}

// Recipes returns a copy of the recipe list
func (s *Store) Recipes() []models.Recipe {
	out := make([]models.Recipe, len(s.recipes))
	for i, r := range s.recipes {
		out[i] = r.Clone()
	}
	return out
}

// GetRecipe returns the recipe with the given id
func (s *Store) GetRecipe(id string) (models.Recipe, bool) {
	for _, r := range s.recipes {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return models.Recipe{}, false
}

// AddRecipe appends a recipe, assigning a new id when ID is empty. The
// total base is always derived from the two ingredient amounts.
func (s *Store) AddRecipe(r models.Recipe) (models.Recipe, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r = r.Clone()
	r.TotalBase = r.BaseChicken + r.BasePork
	next := append(slices.Clone(s.recipes), r)
	return r.Clone(), s.commit(stage(&s.recipes, database.KeyRecipes, next, "create", r.ID))
}

// UpdateRecipe replaces the recipe with the same id. Unknown ids are ignored.
func (s *Store) UpdateRecipe(r models.Recipe) error {
	i := slices.IndexFunc(s.recipes, func(x models.Recipe) bool { return x.ID == r.ID })
	if i < 0 {
		return nil
	}
	next := slices.Clone(s.recipes)
	next[i] = r.Clone()
	next[i].TotalBase = r.BaseChicken + r.BasePork
	return s.commit(stage(&s.recipes, database.KeyRecipes, next, "update", r.ID))
}

// DeleteRecipe removes the recipe with the given id. Unknown ids are ignored.
func (s *Store) DeleteRecipe(id string) error {
	i := slices.IndexFunc(s.recipes, func(x models.Recipe) bool { return x.ID == id })
	if i < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(s.recipes), i, i+1)
	return s.commit(stage(&s.recipes, database.KeyRecipes, next, "delete", id))
}

// LinkRecipeProduct ties a recipe to the product it produces. Unknown
// recipes are ignored.
func (s *Store) LinkRecipeProduct(recipeID string, productID int64) error {
	r, ok := s.GetRecipe(recipeID)
	if !ok {
		return nil
	}
	r.LinkedProductID = &productID
	return s.UpdateRecipe(r)
}

// ImportTodaySales runs ImportFromSales over the store's recipes and sales
// for the current day
func (s *Store) ImportTodaySales(inputs map[string]float64) (map[string]float64, int) {
	return ImportFromSales(s.recipes, s.sales, inputs, s.opts.Now())
}

// Plans returns the production plan log, most recent first
func (s *Store) Plans() []models.ProductionPlan {
	out := make([]models.ProductionPlan, len(s.plans))
	for i, p := range s.plans {
		out[i] = p.Clone()
	}
	return out
}

// SavePlan snapshots totals and items into a new plan and puts it at the
// head of the log
func (s *Store) SavePlan(totals models.PlanTotals, items []models.PlanItem) (models.ProductionPlan, error) {
	plan := models.ProductionPlan{
		ID:        uuid.NewString(),
		Timestamp: s.now(),
		Items:     slices.Clone(items),
		Totals:    totals,
	}
	if plan.Items == nil {
		plan.Items = []models.PlanItem{}
	}
	next := slices.Insert(slices.Clone(s.plans), 0, plan)
	if err := s.commit(stage(&s.plans, database.KeyPlans, next, "create", plan.ID)); err != nil {
		return models.ProductionPlan{}, err
	}
	return plan.Clone(), nil
}

// SavePlanFromInputs computes the plan for the given order quantities over
// every recipe and saves it. Plans without any ordered quantity are rejected.
func (s *Store) SavePlanFromInputs(inputs map[string]float64) (models.ProductionPlan, error) {
	totals := Aggregate(s.recipes, inputs)
	if totals.Orders == 0 {
		return models.ProductionPlan{}, ErrEmptyPlan
	}
	return s.SavePlan(totals, PlanItems(s.recipes, inputs))
}
