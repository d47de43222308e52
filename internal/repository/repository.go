package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, memory) inside this directory.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jasonhew98/e-commerce-service/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned by ConditionalUpdate when no row matched the id and expected token.
	// The record was either modified by someone else or deleted.
	ErrConflict  = errors.New("record was modified concurrently")
	ErrDuplicate = errors.New("record already exists")
	ErrBadQuery  = errors.New("invalid query")
)

// ConcurrencyToken is the modification timestamp observed when an aggregate was loaded.
type ConcurrencyToken struct {
	ModifiedAt time.Time
}

// TokenOf captures the current token of agg.
func TokenOf(agg model.Aggregate) ConcurrencyToken {
	return ConcurrencyToken{ModifiedAt: model.Timestamp(agg.Audit().ModifiedAtUTC)}
}

// Equal compares tokens at stored precision.
func (t ConcurrencyToken) Equal(o ConcurrencyToken) bool {
	return model.Timestamp(t.ModifiedAt).Equal(model.Timestamp(o.ModifiedAt))
}

// Store persists one aggregate type with optimistic concurrency control.
// T is a pointer type such as *model.Account.
type Store[T model.Aggregate] interface {
	// Load returns the aggregate and the token to pass back to ConditionalUpdate.
	Load(ctx context.Context, id string) (T, ConcurrencyToken, error)

	// Insert stores a new aggregate. The caller assigns the id and audit fields.
	Insert(ctx context.Context, agg T) error

	// ConditionalUpdate replaces the stored aggregate only if its token still equals expected.
	// On success the modification audit fields of agg are stamped with actor and a timestamp
	// strictly after expected. On ErrConflict agg is left unchanged.
	ConditionalUpdate(ctx context.Context, agg T, expected ConcurrencyToken, actor model.Actor) error

	Count(ctx context.Context) (int, error)

	// List returns a page and the total number of rows.
	List(ctx context.Context, pq PageQuery) (*PageResult[T], error)

	// FindOne returns the first aggregate matching every filter, or ErrNotFound.
	FindOne(ctx context.Context, filters ...Filter) (T, error)
}

// PageQuery holds limit/offset pagination and ordering parameters.
type PageQuery struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// Filter is an equality match on a whitelisted field.
type Filter struct {
	Field string
	Value string
}

const (
	SortAsc  = "asc"
	SortDesc = "desc"

	SortCreatedAt  = "created_at"
	SortModifiedAt = "modified_at"
)

// Collection describes how an aggregate type is stored: its table and the document fields that
// can be filtered or sorted on. Keys are the names callers use; values are JSON field names.
type Collection struct {
	Table      string
	Filterable map[string]string
	Sortable   map[string]string
}

// FilterField resolves a filter name to its JSON field.
func (c Collection) FilterField(name string) (string, error) {
	f, ok := c.Filterable[name]
	if !ok {
		return "", fmt.Errorf("%w: field %q is not filterable on %s", ErrBadQuery, name, c.Table)
	}
	return f, nil
}

// Order normalizes pq's ordering. The returned field is either SortCreatedAt, SortModifiedAt or a
// JSON field name from Sortable; isColumn reports the first two.
func (c Collection) Order(pq PageQuery) (field string, isColumn bool, desc bool, err error) {
	switch strings.ToLower(pq.SortOrder) {
	case "", SortDesc:
		desc = true
	case SortAsc:
	default:
		return "", false, false, fmt.Errorf("%w: sort order %q", ErrBadQuery, pq.SortOrder)
	}

	switch pq.SortBy {
	case "", SortCreatedAt:
		return SortCreatedAt, true, desc, nil
	case SortModifiedAt:
		return SortModifiedAt, true, desc, nil
	}
	f, ok := c.Sortable[pq.SortBy]
	if !ok {
		return "", false, false, fmt.Errorf("%w: field %q is not sortable on %s", ErrBadQuery, pq.SortBy, c.Table)
	}
	return f, false, desc, nil
}

// Collections used by the service.
var (
	Accounts = Collection{
		Table:      "accounts",
		Filterable: map[string]string{"email": "email", "full_name": "full_name"},
		Sortable:   map[string]string{"full_name": "full_name", "email": "email"},
	}
	Users = Collection{
		Table:      "users",
		Filterable: map[string]string{"user_name": "user_name", "email": "email"},
		Sortable:   map[string]string{"user_name": "user_name", "full_name": "full_name"},
	}
	Products = Collection{
		Table:      "products",
		Filterable: map[string]string{"product_name": "product_name"},
		Sortable:   map[string]string{"product_name": "product_name", "product_price": "product_price"},
	}
)
