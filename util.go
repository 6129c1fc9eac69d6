package livetable

import "strings"

// relationPath reports whether attribute traverses a relationship.
func relationPath(attribute string) bool {
	return strings.Contains(attribute, ".")
}

// lastPage returns the number of pages needed for total rows. An empty result
// still has one page.
func lastPage(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// pageBounds returns the 1-based positions of the first and last row shown on
// page. Both are zero when the page is empty.
func pageBounds(total int64, page, perPage, shown int) (from, to int) {
	if shown == 0 || total == 0 {
		return 0, 0
	}
	from = (page-1)*perPage + 1
	return from, from + shown - 1
}
