package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/usecase"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/errutil"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// statusOf maps the use case error taxonomy to an HTTP status
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrInvalidState), errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.From(ctx).Warn("failed to write response", "error", err)
	}
}

// decodeBody reads a JSON body into dst and validates its struct tags
func (s *Server) decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return goerr.Wrap(errBadRequest, "malformed JSON body", goerr.V("cause", err.Error()))
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return goerr.Wrap(errBadRequest, "invalid request body",
				goerr.V("field", verrs[0].Field()), goerr.V("rule", verrs[0].Tag()))
		}
		return goerr.Wrap(errBadRequest, "invalid request body")
	}
	return nil
}

// parsePage reads page and page_size query parameters. Missing values fall
// back to the defaults; non-numeric or out of range values are rejected.
func parsePage(r *http.Request) (model.PageRequest, error) {
	var req model.PageRequest
	q := r.URL.Query()

	for _, p := range []struct {
		name string
		dst  *int
		max  int
	}{
		{name: "page", dst: &req.Page, max: model.MaxPage},
		{name: "page_size", dst: &req.PageSize, max: model.MaxPageSize},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || (p.max > 0 && n > p.max) {
			return req, goerr.Wrap(errBadRequest, "invalid pagination parameter",
				goerr.V("param", p.name), goerr.V("value", raw))
		}
		*p.dst = n
	}

	return req.Normalize(), nil
}

type pageResponse[T any] struct {
	Items      []T `json:"items"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
}

func toPageResponse[S, T any](p *model.Page[S], conv func(S) T) pageResponse[T] {
	items := make([]T, len(p.Items))
	for i, item := range p.Items {
		items[i] = conv(item)
	}
	return pageResponse[T]{
		Items:      items,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
}
