package models

// Default page sizes per listing type.
const (
	DefaultPageSize        = 15
	TrendingPageSize       = 4
	SearchPageSize         = 5
	DigestPostsPerCategory = 3
)

// Page is the response envelope for every paginated listing.
type Page[T any] struct {
	Items        []T `json:"items"`
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalItems   int `json:"total_items"`
	ItemsPerPage int `json:"items_per_page"`
}

// NewPage assembles a page envelope. TotalPages is ceil(total/size).
func NewPage[T any](items []T, page, size int, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	return &Page[T]{
		Items:        items,
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   int(total),
		ItemsPerPage: size,
	}
}

// NormalizePage coerces a page number to be 1-based and a size to its default.
func NormalizePage(page int, size int, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}
	return page, size
}
