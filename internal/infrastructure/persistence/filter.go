package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/pharmos/backend/internal/domain/shared"
)

// allowedSortColumns limits ORDER BY to known column names; anything else
// falls through to the created_at default so filter input can never inject
// SQL through the sort clause.
var allowedSortColumns = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"name":           true,
	"code":           true,
	"order_number":   true,
	"total_amount":   true,
	"category":       true,
	"status":         true,
	"stock_quantity": true,
	"unit_price":     true,
	"year":           true,
	"month":          true,
	"amount":         true,
	"email":          true,
}

// applyFilter applies pagination and ordering from a shared.Filter
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := "created_at"
	if allowedSortColumns[filter.OrderBy] {
		orderBy = filter.OrderBy
	}
	orderDir := "DESC"
	if strings.ToLower(filter.OrderDir) == "asc" {
		orderDir = "ASC"
	}
	return query.Order(orderBy + " " + orderDir)
}
