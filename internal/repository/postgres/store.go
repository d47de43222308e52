package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/repository"
)

const uniqueViolation = "23505"

// Store is a PostgreSQL implementation of repository.Store. Each aggregate is kept as a JSONB
// document next to its id and the created/modified timestamps used for ordering and concurrency.
type Store[T model.Aggregate] struct {
	db   *sql.DB
	coll repository.Collection
	newT func() T
	now  func() time.Time
}

var (
	_ repository.Store[*model.Account] = (*Store[*model.Account])(nil)
	_ repository.Store[*model.User]    = (*Store[*model.User])(nil)
	_ repository.Store[*model.Product] = (*Store[*model.Product])(nil)
)

// NewStore creates a store over coll.Table. newT must return a fresh, non-nil aggregate.
func NewStore[T model.Aggregate](db *sql.DB, coll repository.Collection, newT func() T) *Store[T] {
	return &Store[T]{db: db, coll: coll, newT: newT, now: time.Now}
}

func NewAccountStore(db *sql.DB) *Store[*model.Account] {
	return NewStore(db, repository.Accounts, func() *model.Account { return &model.Account{} })
}

func NewUserStore(db *sql.DB) *Store[*model.User] {
	return NewStore(db, repository.Users, func() *model.User { return &model.User{} })
}

func NewProductStore(db *sql.DB) *Store[*model.Product] {
	return NewStore(db, repository.Products, func() *model.Product { return &model.Product{} })
}

// Load fetches a single aggregate by its ID.
func (s *Store[T]) Load(ctx context.Context, id string) (T, repository.ConcurrencyToken, error) {
	q := fmt.Sprintf(`SELECT data, modified_at FROM %s WHERE id = $1`, s.coll.Table)
	agg, err := s.scanOne(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		var zero T
		return zero, repository.ConcurrencyToken{}, err
	}
	return agg, repository.TokenOf(agg), nil
}

// Insert stores a new aggregate row.
func (s *Store[T]) Insert(ctx context.Context, agg T) error {
	audit := agg.Audit()
	audit.CreatedAtUTC = model.Timestamp(audit.CreatedAtUTC)
	audit.ModifiedAtUTC = model.Timestamp(audit.ModifiedAtUTC)

	data, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.coll.Table, err)
	}
	q := fmt.Sprintf(`INSERT INTO %s (id, data, created_at, modified_at) VALUES ($1, $2, $3, $4)`, s.coll.Table)
	if _, err := s.db.ExecContext(ctx, q, agg.AggregateID(), data, audit.CreatedAtUTC, audit.ModifiedAtUTC); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
		}
		return err
	}
	return nil
}

// ConditionalUpdate writes agg in a single UPDATE guarded by the expected modified_at.
func (s *Store[T]) ConditionalUpdate(ctx context.Context, agg T, expected repository.ConcurrencyToken, actor model.Actor) error {
	audit := agg.Audit()
	prev := *audit
	expectedAt := model.Timestamp(expected.ModifiedAt)
	audit.SetModified(actor, model.NextModified(expectedAt, s.now()))

	data, err := json.Marshal(agg)
	if err != nil {
		*audit = prev
		return fmt.Errorf("marshal %s: %w", s.coll.Table, err)
	}

	q := fmt.Sprintf(`UPDATE %s SET data = $2, modified_at = $3 WHERE id = $1 AND modified_at = $4`, s.coll.Table)
	res, err := s.db.ExecContext(ctx, q, agg.AggregateID(), data, audit.ModifiedAtUTC, expectedAt)
	if err != nil {
		*audit = prev
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		*audit = prev
		return err
	}
	if n == 0 {
		*audit = prev
		return repository.ErrConflict
	}
	return nil
}

func (s *Store[T]) Count(ctx context.Context) (int, error) {
	var total int
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.coll.Table)
	if err := s.db.QueryRowContext(ctx, q).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// List returns aggregates using LIMIT/OFFSET pagination and a total count.
func (s *Store[T]) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[T], error) {
	field, isColumn, desc, err := s.coll.Order(pq)
	if err != nil {
		return nil, err
	}
	orderExpr := field
	if !isColumn {
		orderExpr = fmt.Sprintf("data->'%s'", field)
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}

	total, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`SELECT data, modified_at FROM %s ORDER BY %s %s, id %s LIMIT $1 OFFSET $2`,
		s.coll.Table, orderExpr, dir, dir)
	rows, err := s.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		agg, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[T]{Items: items, Total: total}, nil
}

// FindOne matches JSON fields by text equality.
func (s *Store[T]) FindOne(ctx context.Context, filters ...repository.Filter) (T, error) {
	var zero T
	if len(filters) == 0 {
		return zero, fmt.Errorf("%w: at least one filter is required", repository.ErrBadQuery)
	}

	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for i, f := range filters {
		field, err := s.coll.FilterField(f.Field)
		if err != nil {
			return zero, err
		}
		conds = append(conds, fmt.Sprintf("data->>'%s' = $%d", field, i+1))
		args = append(args, f.Value)
	}

	q := fmt.Sprintf(`SELECT data, modified_at FROM %s WHERE %s ORDER BY created_at LIMIT 1`,
		s.coll.Table, strings.Join(conds, " AND "))
	return s.scanOne(s.db.QueryRowContext(ctx, q, args...))
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store[T]) scanOne(row scanner) (T, error) {
	var (
		zero       T
		data       []byte
		modifiedAt time.Time
	)
	if err := row.Scan(&data, &modifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, repository.ErrNotFound
		}
		return zero, err
	}
	agg := s.newT()
	if err := json.Unmarshal(data, agg); err != nil {
		return zero, fmt.Errorf("unmarshal %s: %w", s.coll.Table, err)
	}
	// The column is authoritative for the token.
	agg.Audit().ModifiedAtUTC = model.Timestamp(modifiedAt)
	return agg, nil
}
