// Package memory is an in-process repository.Store used for local runs and tests.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/repository"
)

type record struct {
	data       []byte
	fields     map[string]json.RawMessage
	createdAt  time.Time
	modifiedAt time.Time
}

// Store keeps aggregates as serialized documents so callers never share memory with it.
type Store[T model.Aggregate] struct {
	mu   sync.Mutex
	rows map[string]record
	coll repository.Collection
	newT func() T
	now  func() time.Time
}

var _ repository.Store[*model.Account] = (*Store[*model.Account])(nil)

func NewStore[T model.Aggregate](coll repository.Collection, newT func() T) *Store[T] {
	return &Store[T]{
		rows: make(map[string]record),
		coll: coll,
		newT: newT,
		now:  time.Now,
	}
}

func NewAccountStore() *Store[*model.Account] {
	return NewStore(repository.Accounts, func() *model.Account { return &model.Account{} })
}

func NewUserStore() *Store[*model.User] {
	return NewStore(repository.Users, func() *model.User { return &model.User{} })
}

func NewProductStore() *Store[*model.Product] {
	return NewStore(repository.Products, func() *model.Product { return &model.Product{} })
}

func (s *Store[T]) Load(ctx context.Context, id string) (T, repository.ConcurrencyToken, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, repository.ConcurrencyToken{}, err
	}
	s.mu.Lock()
	rec, ok := s.rows[id]
	s.mu.Unlock()
	if !ok {
		return zero, repository.ConcurrencyToken{}, repository.ErrNotFound
	}
	agg, err := s.decode(rec)
	if err != nil {
		return zero, repository.ConcurrencyToken{}, err
	}
	return agg, repository.TokenOf(agg), nil
}

func (s *Store[T]) Insert(ctx context.Context, agg T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	audit := agg.Audit()
	audit.CreatedAtUTC = model.Timestamp(audit.CreatedAtUTC)
	audit.ModifiedAtUTC = model.Timestamp(audit.ModifiedAtUTC)
	rec, err := s.encode(agg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[agg.AggregateID()]; exists {
		return fmt.Errorf("%w: %s %s", repository.ErrDuplicate, s.coll.Table, agg.AggregateID())
	}
	s.rows[agg.AggregateID()] = rec
	return nil
}

// ConditionalUpdate compares and swaps under the store lock.
func (s *Store[T]) ConditionalUpdate(ctx context.Context, agg T, expected repository.ConcurrencyToken, actor model.Actor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.rows[agg.AggregateID()]
	expectedAt := model.Timestamp(expected.ModifiedAt)
	if !ok || !cur.modifiedAt.Equal(expectedAt) {
		return repository.ErrConflict
	}

	audit := agg.Audit()
	prev := *audit
	audit.SetModified(actor, model.NextModified(expectedAt, s.now()))
	rec, err := s.encode(agg)
	if err != nil {
		*audit = prev
		return err
	}
	rec.createdAt = cur.createdAt
	s.rows[agg.AggregateID()] = rec
	return nil
}

func (s *Store[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows), nil
}

func (s *Store[T]) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	field, isColumn, desc, err := s.coll.Order(pq)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	ids := make([]string, 0, len(s.rows))
	recs := make(map[string]record, len(s.rows))
	for id, r := range s.rows {
		ids = append(ids, id)
		recs[id] = r
	}
	s.mu.Unlock()

	compare := func(a, b string) int {
		ra, rb := recs[a], recs[b]
		var c int
		switch {
		case isColumn && field == repository.SortModifiedAt:
			c = ra.modifiedAt.Compare(rb.modifiedAt)
		case isColumn:
			c = ra.createdAt.Compare(rb.createdAt)
		default:
			c = compareJSON(ra.fields[field], rb.fields[field])
		}
		if c == 0 {
			if a < b {
				c = -1
			} else if a > b {
				c = 1
			}
		}
		return c
	}
	sort.Slice(ids, func(i, j int) bool {
		c := compare(ids[i], ids[j])
		if desc {
			return c > 0
		}
		return c < 0
	})

	total := len(ids)
	start := min(max(pq.Offset, 0), total)
	end := total
	if pq.Limit > 0 {
		end = min(start+pq.Limit, total)
	}

	items := make([]T, 0, end-start)
	for _, id := range ids[start:end] {
		agg, err := s.decode(recs[id])
		if err != nil {
			return nil, err
		}
		items = append(items, agg)
	}
	return &repository.PageResult[T]{Items: items, Total: total}, nil
}

// FindOne compares the text form of string fields, and the raw JSON of anything else.
func (s *Store[T]) FindOne(ctx context.Context, filters ...repository.Filter) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if len(filters) == 0 {
		return zero, fmt.Errorf("%w: at least one filter is required", repository.ErrBadQuery)
	}
	fields := make([]string, len(filters))
	for i, f := range filters {
		name, err := s.coll.FilterField(f.Field)
		if err != nil {
			return zero, err
		}
		fields[i] = name
	}

	s.mu.Lock()
	var (
		found bool
		best  record
	)
	for _, rec := range s.rows {
		match := true
		for i, f := range filters {
			if textOf(rec.fields[fields[i]]) != f.Value {
				match = false
				break
			}
		}
		if match && (!found || rec.createdAt.Before(best.createdAt)) {
			best, found = rec, true
		}
	}
	s.mu.Unlock()

	if !found {
		return zero, repository.ErrNotFound
	}
	return s.decode(best)
}

func (s *Store[T]) encode(agg T) (record, error) {
	data, err := json.Marshal(agg)
	if err != nil {
		return record{}, fmt.Errorf("marshal %s: %w", s.coll.Table, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return record{}, fmt.Errorf("index %s: %w", s.coll.Table, err)
	}
	audit := agg.Audit()
	return record{
		data:       data,
		fields:     fields,
		createdAt:  audit.CreatedAtUTC,
		modifiedAt: audit.ModifiedAtUTC,
	}, nil
}

func (s *Store[T]) decode(rec record) (T, error) {
	var zero T
	agg := s.newT()
	if err := json.Unmarshal(rec.data, agg); err != nil {
		return zero, fmt.Errorf("unmarshal %s: %w", s.coll.Table, err)
	}
	return agg, nil
}

func textOf(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return string(raw)
}

// compareJSON orders numbers numerically and everything else by text.
func compareJSON(a, b json.RawMessage) int {
	var fa, fb float64
	if json.Unmarshal(a, &fa) == nil && json.Unmarshal(b, &fb) == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return bytes.Compare([]byte(textOf(a)), []byte(textOf(b)))
}
