// Package domain provides core business logic interfaces and types.
package domain

// --- Filter & Pagination ---

// ListFilter narrows what a repository loads before the in-memory filter runs.
type ListFilter struct {
	// IDs restricts the result to specific record IDs
	IDs []string

	// Limit caps the number of rows loaded (0 = no cap)
	Limit int
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// Paginate cuts one page out of items. A non-positive limit returns
// everything from offset on. The returned Items never alias items.
func Paginate[T any](items []T, limit, offset int) ListResult[T] {
	result := ListResult[T]{
		TotalCount: int64(len(items)),
		Limit:      limit,
		Offset:     offset,
	}

	if offset < 0 {
		offset = 0
		result.Offset = 0
	}
	if offset >= len(items) {
		result.Items = []T{}
		return result
	}

	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	result.Items = append(make([]T, 0, end-offset), items[offset:end]...)
	return result
}
