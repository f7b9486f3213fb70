package columns

// Sort directions. The values match the ?order= query parameter.
const (
	Ascending  = 1
	Descending = -1
)

// SortState is the sort currently applied to the table.
type SortState struct {
	Key   string
	Order int
}

// SortRequest is emitted when a sortable column header is activated.
type SortRequest struct {
	SortKey string `json:"sortKey"`
	Order   int    `json:"order"`
}

// NextSort returns the request for activating the header of field while
// current is applied. The direction flips on every activation.
func NextSort(field Field, current SortState) SortRequest {
	order := Descending
	if current.Order == Descending {
		order = Ascending
	}
	return SortRequest{SortKey: field.SortKey(), Order: order}
}

// Active reports whether field is the column the table is sorted by.
func (s SortState) Active(field Field) bool {
	return field.Sortable && s.Key != "" && field.SortKey() == s.Key
}
