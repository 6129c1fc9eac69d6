package livetable

import (
	"fmt"
	"net/http"
	"strconv"
)

// Request carries the bound values a table interaction sends back.
//
// Fields:
//   - Search: The new search term, nil when the request does not touch it.
//   - Sort: The attribute whose header was clicked, empty for none.
//   - Page: The requested page, 0 when not sent.
//   - PerPage: The requested page size, 0 when not sent.
type Request struct {
	Search  *string `form:"search"`
	Sort    string  `form:"sort"`
	Page    int     `form:"page"`
	PerPage int     `form:"per_page"`
}

// ParseRequest parses the interaction values from the given http request.
//
// The search, sort, page and per_page parameters are read from the query
// string or the form body. Missing parameters are left at their zero value;
// page and per_page must be integers when present.
//
// The function returns the parsed request and nil if the request is valid,
// otherwise it returns nil and an error.
func ParseRequest(r *http.Request) (*Request, error) {
	var data Request

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form: %v", err)
	}

	if _, ok := r.Form[requestSearch]; ok {
		term := r.Form.Get(requestSearch)
		data.Search = &term
	}
	data.Sort = r.Form.Get(requestSort)

	if v := r.Form.Get(requestPage); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid value for page: %v", err)
		}
		data.Page = page
	}

	if v := r.Form.Get(requestPerPage); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid value for per_page: %v", err)
		}
		if perPage <= 0 {
			return nil, fmt.Errorf("invalid value for per_page: %d", perPage)
		}
		data.PerPage = perPage
	}

	return &data, nil
}

// Apply folds a parsed request into the table state, in the order a user
// would have caused it: search, sort, page size and finally page. Changing
// the search or the page size resets the page, so an explicit page in the
// same request wins.
func (t *Table[T]) Apply(req Request) error {
	if req.Search != nil {
		t.state.SetSearch(*req.Search)
	}
	if req.Sort != "" {
		t.state.Sort(req.Sort)
	}
	if req.PerPage != 0 {
		if err := t.state.SetPerPage(req.PerPage); err != nil {
			return err
		}
	}
	if req.Page != 0 {
		t.state.SetPage(req.Page)
	}
	return nil
}
