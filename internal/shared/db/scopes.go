// Package db provides transaction management and shared query scopes.
package db

import (
	"strings"

	"gorm.io/gorm"
)

// Paginate applies LIMIT/OFFSET for a 1-based page. pageSize <= 0 disables it.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if pageSize <= 0 {
			return db
		}
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// OrderBy orders by column only when it is in allowed, falling back to
// fallback otherwise. desc selects the direction.
func OrderBy(column string, desc bool, allowed map[string]bool, fallback string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column = strings.ToLower(strings.TrimSpace(column))
		if !allowed[column] {
			column = fallback
		}
		dir := " ASC"
		if desc {
			dir = " DESC"
		}
		return db.Order(column + dir)
	}
}
