package catalog

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	SortPriority = "priority"
	SortCreated  = "created"
	SortTitle    = "title"
)

// ListQuery is the search/sort part of a public list request.
type ListQuery struct {
	Query string
	Sort  string
}

func ListQueryFromContext(c *gin.Context) ListQuery {
	return ListQuery{
		Query: strings.TrimSpace(c.Query("q")),
		Sort:  strings.ToLower(strings.TrimSpace(c.Query("sort"))),
	}
}

// Apply adds the title search and ordering. Unknown sorts fall back to
// priority, the ranking the promotion engine feeds.
func (q ListQuery) Apply(db *gorm.DB) *gorm.DB {
	if q.Query != "" {
		like := "%" + q.Query + "%"
		db = db.Where("title LIKE ? OR slug LIKE ?", like, like)
	}
	switch q.Sort {
	case SortCreated:
		return db.Order("created_at DESC").Order("id")
	case SortTitle:
		return db.Order("title ASC").Order("id")
	default:
		return db.Order("priority DESC").Order("created_at DESC").Order("id")
	}
}
