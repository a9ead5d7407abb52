package forum

import (
	"strings"

	"gorm.io/gorm"
)

// applySearch filters posts on title and content. Postgres uses the
// idx_posts_search expression index; other dialects fall back to LIKE.
func applySearch(query *gorm.DB, search string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" {
		return query
	}

	if query.Dialector.Name() == "postgres" {
		return query.Where(
			"to_tsvector('simple', title || ' ' || content) @@ plainto_tsquery('simple', ?)",
			search,
		)
	}

	like := "%" + strings.ToLower(search) + "%"
	return query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", like, like)
}
