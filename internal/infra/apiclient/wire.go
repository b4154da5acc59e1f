package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"

	"github.com/google/uuid"
)

// ============================================================
// Wire scalars
// ============================================================

// wireTime accepts the datetime shapes the backend emits: RFC 3339 with
// or without offset, and plain dates.
type wireTime struct {
	time.Time
}

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range wireTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid datetime %q", raw)
}

func (t *wireTime) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// money decodes Decimal values, which arrive either as JSON numbers or
// as strings ("150.00").
type money float64

func (m *money) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	if raw == "" || raw == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", raw)
	}
	*m = money(v)
	return nil
}

// ============================================================
// Helpers shared by the adapters
// ============================================================

func statusFromAtivo(ativo bool) string {
	if ativo {
		return "ativo"
	}
	return "inativo"
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// validateID rejects anything that is not a UUID before a request is made.
func validateID(resource, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &domain.ErrValidation{Field: resource + "_id", Message: fmt.Sprintf("id inválido: %q", id)}
	}
	return nil
}

// asNotFound turns a backend 404 into *domain.ErrNotFound.
func asNotFound(err error, resource, id string) error {
	var apiErr *domain.ErrAPI
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return &domain.ErrNotFound{Resource: resource, ID: id}
	}
	return err
}

// listAll drains a skip/limit paginated collection.
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values, limit int) ([]T, error) {
	if query == nil {
		query = url.Values{}
	}
	var all []T
	for skip := 0; ; skip += limit {
		query.Set("skip", strconv.Itoa(skip))
		query.Set("limit", strconv.Itoa(limit))

		var page []T
		if err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Out: &page}); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < limit {
			return all, nil
		}
	}
}
