package service

import (
	"counterpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PathTo returns a chain of product ids from start to target following
// ingredient edges, or nil when target is unreachable. Iterative with a
// visited set, so it terminates on cyclic data too.
func (b BOM) PathTo(start, target uuid.UUID) []uuid.UUID {
	parent := map[uuid.UUID]uuid.UUID{}
	visited := map[uuid.UUID]bool{start: true}
	queue := []uuid.UUID{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == target {
			path := []uuid.UUID{id}
			for id != start {
				id = parent[id]
				path = append([]uuid.UUID{id}, path...)
			}
			return path
		}
		for _, e := range b[id] {
			if visited[e.IngredientID] {
				continue
			}
			visited[e.IngredientID] = true
			parent[e.IngredientID] = id
			queue = append(queue, e.IngredientID)
		}
	}
	return nil
}

// costFrame is one pending node of the cost walk. Children are pushed after
// the frame is first visited; the frame is folded into its parent once all
// of them are done.
type costFrame struct {
	id       uuid.UUID
	factor   decimal.Decimal
	expanded bool
}

// TotalCost rolls up the bill-of-materials cost of productID:
//
//	cost(p) = Σ edge.qpu × cost(ingredient)   when p has edges
//	cost(p) = p.Cost                           otherwise
//
// products supplies each node's own cost and name. A cycle on the current
// path fails with *CatalogIntegrityError instead of looping.
func (b BOM) TotalCost(productID uuid.UUID, products map[uuid.UUID]*model.Product) (decimal.Decimal, error) {
	total := decimal.Zero
	onPath := map[uuid.UUID]bool{}
	path := []uuid.UUID{}
	stack := []costFrame{{id: productID, factor: decimal.NewFromInt(1)}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.expanded {
			onPath[top.id] = false
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
			continue
		}
		if onPath[top.id] {
			return decimal.Zero, b.cycleError(productID, append(path, top.id), products)
		}

		edges := b[top.id]
		if len(edges) == 0 {
			if p := products[top.id]; p != nil {
				total = total.Add(p.Cost.Mul(top.factor))
			}
			stack = stack[:len(stack)-1]
			continue
		}

		top.expanded = true
		onPath[top.id] = true
		path = append(path, top.id)
		factor := top.factor
		for _, e := range edges {
			stack = append(stack, costFrame{
				id:     e.IngredientID,
				factor: factor.Mul(decimal.NewFromInt(int64(e.QuantityPerUnit))),
			})
		}
	}
	return total, nil
}

func (b BOM) cycleError(productID uuid.UUID, ids []uuid.UUID, products map[uuid.UUID]*model.Product) error {
	// Trim the path to the cycle itself.
	last := ids[len(ids)-1]
	start := 0
	for i, id := range ids[:len(ids)-1] {
		if id == last {
			start = i
			break
		}
	}
	names := make([]string, 0, len(ids)-start)
	for _, id := range ids[start:] {
		if p := products[id]; p != nil {
			names = append(names, p.Name)
		} else {
			names = append(names, id.String())
		}
	}
	return &CatalogIntegrityError{ProductID: productID, Path: names}
}
