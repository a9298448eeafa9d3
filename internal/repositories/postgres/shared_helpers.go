package postgres

import (
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SharedHelpers holds query building blocks used by several repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyPaginationAndSort applies ordering and limit/offset to a query.
// Sort columns are whitelisted per repository before reaching here.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if sortBy != "" {
		order := "asc"
		if sortOrder == "desc" {
			order = "desc"
		}
		query = query.Order(fmt.Sprintf("%s %s", sortBy, order))
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// jsonStringArray builds a single-element jsonb array for containment
// checks against jsonb id-list columns (manager_ids @> '["u1"]').
func jsonStringArray(value string) datatypes.JSON {
	return datatypes.JSON(fmt.Sprintf("[%q]", value))
}
