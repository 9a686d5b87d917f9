package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rpupo63/newsroom-backend/errs"
)

// maxPageSize caps ?page_size on list endpoints.
const maxPageSize = 100

// idParam parses a numeric path parameter. Non-numeric ids can never match a
// row, so they are reported as not found.
func idParam(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 0)
	if err != nil || id == 0 {
		return 0, errs.NewNotFoundError("no such " + name)
	}
	return uint(id), nil
}
