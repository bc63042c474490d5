// Package rank assigns rank order and locates a target in a result set.
// Pure functions, no I/O.
package rank

import "github.com/placemetrics/rankengine/models"

// Assign stamps 1-based ranks in list order and returns the slice.
func Assign(entities []models.Entity) []models.Entity {
	for i := range entities {
		entities[i].Rank = i + 1
	}
	return entities
}

// Locate finds the target entity by id. found=false is a normal outcome,
// the target may sit below the collected window.
func Locate(entities []models.Entity, targetID string) (target *models.Entity, rank int, found bool) {
	for i := range entities {
		if entities[i].ID == targetID {
			return &entities[i], entities[i].Rank, true
		}
	}
	return nil, 0, false
}

// Neighbors returns the entities directly above and below the given rank.
func Neighbors(entities []models.Entity, targetRank int) *models.Comparison {
	cmp := &models.Comparison{}
	for i := range entities {
		switch entities[i].Rank {
		case targetRank - 1:
			cmp.Above = &entities[i]
		case targetRank + 1:
			cmp.Below = &entities[i]
		}
	}
	if cmp.Above == nil && cmp.Below == nil {
		return nil
	}
	return cmp
}
