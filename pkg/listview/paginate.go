package listview

import "github.com/hmkim/ordertrack/pkg/models"

// DefaultPerPage is the default page window; PerPageOptions are the sizes
// the views offer.
const DefaultPerPage = 10

var PerPageOptions = []int{10, 15, 20}

// PageCount returns ceil(total/perPage), minimum 0.
func PageCount(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Paginate slices the zero-based page window out of records. A page beyond
// the end yields an empty slice.
func Paginate[T any](records []T, page, perPage int) []T {
	if page < 0 || perPage <= 0 {
		return nil
	}
	lo := page * perPage
	if lo >= len(records) {
		return nil
	}
	hi := lo + perPage
	if hi > len(records) {
		hi = len(records)
	}
	return records[lo:hi]
}

// Apply filters the full collection, then windows it with s. It returns the
// visible page and the total page count for the filtered set.
func Apply[T models.Record](records []T, s State) (page []T, pageCount int) {
	filtered := Filter(records, s.Query)
	return Paginate(filtered, s.Page, s.PerPage), PageCount(len(filtered), s.PerPage)
}
