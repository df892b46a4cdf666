package store

// Page is one page of a filtered listing. Total counts every match, not just
// the returned items.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// HasMore reports whether items exist beyond this page.
func (p *Page[T]) HasMore() bool {
	return p.Offset+len(p.Items) < p.Total
}
