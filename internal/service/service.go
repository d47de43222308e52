package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/attachment"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PIICipher encrypts personal data before it reaches the store.
type PIICipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
	Matches(candidate, stored string) (bool, error)
}

// AttachmentReconciler is implemented by *attachment.Synchronizer.
type AttachmentReconciler interface {
	Reconcile(ctx context.Context, existing []model.Attachment, incoming []attachment.Item) (*attachment.Result, error)
	Cleanup(ctx context.Context, keys []string)
}

// ListQuery selects one page of a listing. CurrentPage is 1-based; values below 1 mean the first page.
type ListQuery struct {
	SortBy      string
	SortOrder   string
	PageSize    int
	CurrentPage int
}

func (q ListQuery) pageQuery() repository.PageQuery {
	size := q.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	page := q.CurrentPage
	if page < 1 {
		page = 1
	}
	return repository.PageQuery{
		Limit:     size,
		Offset:    size * (page - 1),
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
}

// PageSize describes how many pages a listing has at a given page size.
type PageSize struct {
	TotalCount int `json:"total_count"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Updated is returned by update commands. ModifiedAtUTC is the token for the next update.
type Updated struct {
	ID            string    `json:"id"`
	ModifiedAtUTC time.Time `json:"modified_at_utc"`
}

func countPages[T model.Aggregate](ctx context.Context, store repository.Store[T], size int) (*PageSize, error) {
	if size <= 0 {
		return nil, apperr.Validation("page size must be positive")
	}
	total, err := store.Count(ctx)
	if err != nil {
		return nil, storeError(err, "")
	}
	return &PageSize{TotalCount: total, PageSize: size, TotalPages: (total + size - 1) / size}, nil
}

func listPage[T model.Aggregate, S any](ctx context.Context, store repository.Store[T], q ListQuery, toDTO func(T) (S, error)) ([]S, error) {
	res, err := store.List(ctx, q.pageQuery())
	if err != nil {
		return nil, storeError(err, "")
	}
	out := make([]S, 0, len(res.Items))
	for _, item := range res.Items {
		dto, err := toDTO(item)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

// loadForUpdate loads id and checks the client's copy is current. A zero expected skips the check.
func loadForUpdate[T model.Aggregate](ctx context.Context, store repository.Store[T], id string, expected time.Time, what string) (T, repository.ConcurrencyToken, error) {
	var zero T
	agg, token, err := store.Load(ctx, id)
	if err != nil {
		return zero, repository.ConcurrencyToken{}, storeError(err, what)
	}
	if !expected.IsZero() && !token.Equal(repository.ConcurrencyToken{ModifiedAt: expected}) {
		return zero, repository.ConcurrencyToken{}, apperr.New(apperr.CodeConcurrencyUpdate)
	}
	return agg, token, nil
}

// reconcile runs the synchronizer and maps its validation failures to invalidType.
func reconcile(ctx context.Context, sync AttachmentReconciler, existing []model.Attachment, items []attachment.Item, invalidType apperr.Code) (*attachment.Result, error) {
	res, err := sync.Reconcile(ctx, existing, items)
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, attachment.ErrInvalidType):
		return nil, apperr.Wrap(invalidType, err)
	case errors.Is(err, attachment.ErrInvalidPayload):
		return nil, &apperr.Error{Kind: apperr.KindValidation, Code: apperr.CodeValidation, Message: err.Error(), Err: err}
	default:
		return nil, err
	}
}

// commitUpdate writes agg with the loaded token. Blobs written for this command are removed
// when the write does not go through.
func commitUpdate[T model.Aggregate](ctx context.Context, store repository.Store[T], sync AttachmentReconciler, log *logger.Logger, agg T, token repository.ConcurrencyToken, actor model.Actor, written []string) error {
	err := store.ConditionalUpdate(ctx, agg, token, actor)
	if err == nil {
		return nil
	}
	if len(written) > 0 {
		sync.Cleanup(context.WithoutCancel(ctx), written)
	}
	if errors.Is(err, repository.ErrConflict) {
		log.Info("concurrent_update_rejected", "id", agg.AggregateID())
		return apperr.Wrap(apperr.CodeConcurrencyUpdate, err)
	}
	log.Error("aggregate_update_failed", "id", agg.AggregateID(), "error", err)
	return storeError(err, "")
}

// commitInsert stores a new aggregate, removing its freshly written blobs on failure.
func commitInsert[T model.Aggregate](ctx context.Context, store repository.Store[T], sync AttachmentReconciler, log *logger.Logger, agg T, written []string, duplicate apperr.Code) error {
	err := store.Insert(ctx, agg)
	if err == nil {
		return nil
	}
	if len(written) > 0 {
		sync.Cleanup(context.WithoutCancel(ctx), written)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Wrap(duplicate, err)
	}
	log.Error("aggregate_insert_failed", "id", agg.AggregateID(), "error", err)
	return storeError(err, "")
}

// storeError maps repository errors to typed errors. what names the missing resource.
func storeError(err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if what == "" {
			what = "Record"
		}
		return apperr.NotFound(what + " not found.")
	case errors.Is(err, repository.ErrConflict):
		return apperr.Wrap(apperr.CodeConcurrencyUpdate, err)
	case errors.Is(err, repository.ErrBadQuery):
		return &apperr.Error{Kind: apperr.KindValidation, Code: apperr.CodeValidation, Message: err.Error(), Err: err}
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Wrap(apperr.CodeUnknown, err)
}

// required returns a validation error naming the first blank field.
func required(fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			return apperr.Validation(fmt.Sprintf("%s is required", fields[i]))
		}
	}
	return nil
}

func encryptAll(c PIICipher, values ...*string) error {
	for _, v := range values {
		enc, err := c.Encrypt(*v)
		if err != nil {
			return apperr.Wrap(apperr.CodeUnknown, fmt.Errorf("encrypt: %w", err))
		}
		*v = enc
	}
	return nil
}

func actorOrSystem(a model.Actor) model.Actor {
	if a.ID == "" {
		return model.SystemActor
	}
	if a.Name == "" {
		a.Name = a.ID
	}
	return a
}
