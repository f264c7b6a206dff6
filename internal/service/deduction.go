package service

import (
	"counterpos/internal/model"

	"github.com/google/uuid"
)

// Role tags which tier of the deduction rules produced a contribution.
type Role string

const (
	RoleMain       Role = "main"
	RoleVariant    Role = "variant"
	RoleIngredient Role = "ingredient"
	RoleModifier   Role = "modifier"
)

// PlanLine is the part of an order line the planner needs.
type PlanLine struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	Modifiers []model.SelectedModifier
}

// Contribution is one raw stock decrement from one line and one rule.
type Contribution struct {
	Line   int
	Target model.StockTarget
	Delta  int
	Role   Role
	// Source is the modifier name for RoleModifier, empty otherwise.
	Source string
}

// Deduction is the summed decrement for one stock counter. Role is the role
// of the first contribution to that counter.
type Deduction struct {
	Target model.StockTarget `json:"target"`
	Delta  int               `json:"delta"`
	Role   Role              `json:"role"`
}

// DeductionPlan lists one summed decrement per counter, in first-seen order.
// The floor at zero is applied to each entry at commit time, never to the
// individual contributions.
type DeductionPlan []Deduction

// Delta returns the summed delta for target, or 0 when the plan leaves it alone.
func (p DeductionPlan) Delta(target model.StockTarget) int {
	for _, d := range p {
		if d.Target == target {
			return d.Delta
		}
	}
	return 0
}

// Usage maps each counter to the number of units the plan consumes.
func (p DeductionPlan) Usage() map[model.StockTarget]int {
	out := make(map[model.StockTarget]int, len(p))
	for _, d := range p {
		out[d.Target] = -d.Delta
	}
	return out
}

// BOM is an in-memory bill of materials keyed by parent product.
type BOM map[uuid.UUID][]model.ProductIngredient

func NewBOM(edges []model.ProductIngredient) BOM {
	bom := make(BOM)
	for _, e := range edges {
		bom[e.ProductID] = append(bom[e.ProductID], e)
	}
	return bom
}

// Contributions expands lines into raw decrements, per line in this order:
// main product, variant stock, product ingredients, modifier-linked products.
// Only direct ingredient edges are followed. Modifiers whose snapshot has no
// link information are resolved through mods; unresolved ones add nothing.
func Contributions(lines []PlanLine, bom BOM, mods model.ModifierIndex) []Contribution {
	var out []Contribution
	for i, line := range lines {
		q := line.Quantity
		if q <= 0 {
			continue
		}
		out = append(out, Contribution{Line: i, Target: model.ProductTarget(line.ProductID), Delta: -q, Role: RoleMain})

		if line.VariantID != nil {
			out = append(out, Contribution{
				Line:   i,
				Target: model.VariantTarget(line.ProductID, *line.VariantID),
				Delta:  -q,
				Role:   RoleVariant,
			})
		}

		for _, edge := range bom[line.ProductID] {
			if edge.QuantityPerUnit <= 0 {
				continue
			}
			out = append(out, Contribution{
				Line:   i,
				Target: model.ProductTarget(edge.IngredientID),
				Delta:  -q * edge.QuantityPerUnit,
				Role:   RoleIngredient,
			})
		}

		for _, m := range line.Modifiers {
			m = resolveLink(m, mods)
			if !m.Consumes() {
				continue
			}
			mq := m.Quantity
			if mq < 1 {
				mq = 1
			}
			out = append(out, Contribution{
				Line:   i,
				Target: model.ProductTarget(*m.LinkedProductID),
				Delta:  -q * mq * m.DeductQuantity,
				Role:   RoleModifier,
				Source: m.Name,
			})
		}
	}
	return out
}

func resolveLink(m model.SelectedModifier, mods model.ModifierIndex) model.SelectedModifier {
	if m.LinkKnown {
		return m
	}
	if cur, ok := mods.Lookup(m.ModifierID, m.Name); ok {
		m.LinkedProductID = cur.LinkedProductID
		m.DeductQuantity = cur.DeductQuantity
	}
	m.LinkKnown = true
	return m
}

// Sum folds contributions into one entry per counter.
func Sum(contribs []Contribution) DeductionPlan {
	index := make(map[model.StockTarget]int, len(contribs))
	var plan DeductionPlan
	for _, c := range contribs {
		if c.Delta == 0 {
			continue
		}
		if i, ok := index[c.Target]; ok {
			plan[i].Delta += c.Delta
			continue
		}
		index[c.Target] = len(plan)
		plan = append(plan, Deduction{Target: c.Target, Delta: c.Delta, Role: c.Role})
	}
	return plan
}

// PlanDeductions computes the summed deduction plan for an order.
func PlanDeductions(lines []PlanLine, bom BOM, mods model.ModifierIndex) DeductionPlan {
	return Sum(Contributions(lines, bom, mods))
}
