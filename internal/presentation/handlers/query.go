package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bimakw/tax-harvester/internal/domain/entities"
)

// holdingIDParam reads the {id} route parameter. Any non-empty id is
// accepted; ids the dataset does not know resolve to not-found or no-op.
func holdingIDParam(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	return id, id != ""
}

func isValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// parseGridQuery reads coin, sort_by, sort_order, limit and offset.
// Out-of-range paging values fall back to defaults; an unknown sort column is an error.
func parseGridQuery(r *http.Request) (entities.GridQuery, error) {
	q := entities.GridQuery{}
	params := r.URL.Query()

	q.Filter = strings.TrimSpace(params.Get("coin"))

	if v := params.Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= entities.MaxPageSize {
			q.Limit = l
		}
	}
	if v := params.Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			q.Offset = o
		}
	}
	if v := params.Get("sort_by"); v != "" {
		col, err := entities.ParseSortColumn(v)
		if err != nil {
			return q, err
		}
		q.Sort.Column = col
		q.Sort.Desc = strings.EqualFold(params.Get("sort_order"), "desc")
	}

	return q, nil
}
