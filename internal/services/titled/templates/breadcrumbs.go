package templates

import (
	"strings"

	"github.com/louisbranch/pagetitle/internal/services/titled/sitemap"
)

// BreadcrumbItem represents one breadcrumb entry in a page trail.
type BreadcrumbItem struct {
	// Label is the visible breadcrumb text.
	Label string
	// URL is the optional destination; the current view has none.
	URL string
}

// BuildBreadcrumbs builds the trail for a mounted view chain, outermost first.
// Views without a title are skipped since they contribute nothing to the
// cascade either.
func BuildBreadcrumbs(chain []*sitemap.View) []BreadcrumbItem {
	breadcrumbs := make([]BreadcrumbItem, 0, len(chain))
	for idx, v := range chain {
		if v == nil {
			continue
		}
		label := strings.TrimSpace(v.Title)
		if label == "" {
			continue
		}
		item := BreadcrumbItem{Label: label}
		if idx < len(chain)-1 {
			item.URL = v.Href()
		}
		breadcrumbs = append(breadcrumbs, item)
	}
	if len(breadcrumbs) == 1 {
		return []BreadcrumbItem{}
	}
	return breadcrumbs
}
