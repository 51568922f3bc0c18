package postgres

import (
	"gorm.io/gorm"
)

const defaultListLimit = 100

// SharedHelpers holds the pool and the query helpers every store uses.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// getDB returns tx when the caller is inside a transaction.
func (h *SharedHelpers) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return h.db
}

// ApplyPagination applies limit and offset. A zero limit means the default
// page size.
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = defaultListLimit
	}
	query = query.Limit(limit)
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// preloadUserName loads only the columns needed for computed name fields.
func preloadUserName(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "role")
}
