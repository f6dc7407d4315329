package models

import (
	"slices"
	"time"
)

// Recipe is a fixed ratio of two raw ingredients per production batch
type Recipe struct {
	ID              string  `json:"id"` // e.g. "no1"
	Name            string  `json:"name"`
	BaseChicken     float64 `json:"base_chicken"` // kg of chicken per batch
	BasePork        float64 `json:"base_pork"`    // kg of pork per batch
	TotalBase       float64 `json:"total_base"`   // BaseChicken + BasePork, the ratio denominator
	LinkedProductID *int64  `json:"linked_product_id,omitempty"`
}

// NewRecipe builds a recipe with TotalBase derived from the two ingredient amounts
func NewRecipe(id, name string, baseChicken, basePork float64) Recipe {
	return Recipe{
		ID:          id,
		Name:        name,
		BaseChicken: baseChicken,
		BasePork:    basePork,
		TotalBase:   baseChicken + basePork,
	}
}

// LinkedTo reports whether the recipe produces the given product
func (r Recipe) LinkedTo(productID int64) bool {
	return r.LinkedProductID != nil && *r.LinkedProductID == productID
}

// Clone returns a copy that shares no memory with r
func (r Recipe) Clone() Recipe {
	if r.LinkedProductID != nil {
		id := *r.LinkedProductID
		r.LinkedProductID = &id
	}
	return r
}

// PlanItem is one recipe row of a saved production plan
type PlanItem struct {
	RecipeID      string  `json:"recipe_id"`
	OrderQty      float64 `json:"order_qty"`
	Batches       float64 `json:"batches"`
	ChickenNeeded float64 `json:"chicken_needed"`
	PorkNeeded    float64 `json:"pork_needed"`
}

// PlanTotals aggregates every row of a plan
type PlanTotals struct {
	Orders  float64 `json:"orders"`
	Batches float64 `json:"batches"`
	Chicken float64 `json:"chicken"`
	Pork    float64 `json:"pork"`
}

// ProductionPlan is an immutable snapshot of the planner. Plans are kept
// most-recent-first.
type ProductionPlan struct {
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Items     []PlanItem `json:"items"`
	Totals    PlanTotals `json:"totals"`
}

// Clone returns a copy that shares no memory with p
func (p ProductionPlan) Clone() ProductionPlan {
	p.Items = slices.Clone(p.Items)
	return p
}
