// Package attachment reconciles a submitted attachment list against the attachments an aggregate
// already owns and persists the payloads of new ones.
package attachment

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/storage"
)

var (
	// ErrInvalidType means at least one new item declared a content type outside the allow-list.
	ErrInvalidType = errors.New("attachment content type is not allowed")
	// ErrInvalidPayload means a new item had no file name or a payload that is not valid base64.
	ErrInvalidPayload = errors.New("attachment payload is invalid")
)

var allowedTypes = map[string]struct{}{
	"image/jpg":  {},
	"image/png":  {},
	"image/jpeg": {},
}

// IsAllowedType reports whether blobType may be stored as an attachment.
func IsAllowedType(blobType string) bool {
	_, ok := allowedTypes[blobType]
	return ok
}

// Item is one entry of a submitted attachment list. An item with AttachmentID refers to an
// attachment the aggregate already owns; otherwise it carries a new payload.
type Item struct {
	AttachmentID string `json:"attachment_id,omitempty"`
	FileName     string `json:"attachment_file_name,omitempty"`
	Base64       string `json:"attachment_base64,omitempty"`
	BlobType     string `json:"blob_type,omitempty"`
}

func (i Item) isNew() bool { return i.AttachmentID == "" }

// Result is the reconciled list plus the keys written while producing it.
type Result struct {
	Attachments []model.Attachment
	Written     []string
}

// Synchronizer writes new attachment payloads below a fixed key prefix.
type Synchronizer struct {
	store       storage.Storage
	prefix      string
	concurrency int
	newID       func() string
	log         *logger.Logger
}

type Option func(*Synchronizer)

// WithConcurrency bounds the number of parallel blob writes.
func WithConcurrency(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithIDGenerator replaces the attachment id generator. Used by tests.
func WithIDGenerator(f func() string) Option {
	return func(s *Synchronizer) { s.newID = f }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Synchronizer) { s.log = l }
}

func NewSynchronizer(store storage.Storage, prefix string, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:       store,
		prefix:      strings.Trim(prefix, "/"),
		concurrency: 4,
		newID:       model.NewID,
		log:         logger.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type pending struct {
	index      int
	attachment model.Attachment
	payload    []byte
}

// Reconcile builds the new attachment list for an aggregate.
//
// Every item is validated before anything is written. Keep items resolve against existing by id;
// ids that do not match, or that were already kept earlier in incoming, are dropped. New items get a fresh id, the name "{id}-{fileName}", and
// their decoded payload is written to storage. Reconcile returns only after all writes finished,
// so the caller can commit the aggregate knowing every referenced blob exists. If a write fails,
// blobs already written by this call are removed and a storage-unavailable error is returned.
func (s *Synchronizer) Reconcile(ctx context.Context, existing []model.Attachment, incoming []Item) (*Result, error) {
	for _, it := range incoming {
		if it.isNew() && !IsAllowedType(it.BlobType) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidType, it.BlobType)
		}
	}

	byID := make(map[string]model.Attachment, len(existing))
	for _, a := range existing {
		byID[a.AttachmentID] = a
	}

	slots := make([]*model.Attachment, len(incoming))
	seen := make(map[string]struct{}, len(existing))
	var writes []pending
	for i, it := range incoming {
		if !it.isNew() {
			if _, dup := seen[it.AttachmentID]; dup {
				continue
			}
			if a, ok := byID[it.AttachmentID]; ok {
				a := a
				slots[i] = &a
				seen[it.AttachmentID] = struct{}{}
			}
			continue
		}

		if strings.TrimSpace(it.FileName) == "" {
			return nil, fmt.Errorf("%w: item %d has no file name", ErrInvalidPayload, i)
		}
		payload, err := base64.StdEncoding.DecodeString(it.Base64)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrInvalidPayload, i, err)
		}

		id := s.newID()
		a := model.Attachment{
			AttachmentID: id,
			Name:         fmt.Sprintf("%s-%s", id, path.Base(it.FileName)),
			BlobType:     it.BlobType,
		}
		slots[i] = &a
		writes = append(writes, pending{index: i, attachment: a, payload: payload})
	}

	written, err := s.writeAll(ctx, writes)
	if err != nil {
		return nil, err
	}

	out := make([]model.Attachment, 0, len(incoming))
	for _, a := range slots {
		if a != nil {
			out = append(out, *a)
		}
	}
	return &Result{Attachments: out, Written: written}, nil
}

func (s *Synchronizer) writeAll(ctx context.Context, writes []pending) ([]string, error) {
	if len(writes) == 0 {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		written []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, w := range writes {
		w := w
		g.Go(func() error {
			key := s.Key(w.attachment.Name)
			_, err := s.store.Put(gctx, key, bytes.NewReader(w.payload), storage.PutObjectOptions{
				Size:        int64(len(w.payload)),
				ContentType: w.attachment.BlobType,
				Metadata:    map[string]string{"attachment-id": w.attachment.AttachmentID},
			})
			if err != nil {
				return fmt.Errorf("write attachment %s: %w", w.attachment.AttachmentID, err)
			}
			mu.Lock()
			written = append(written, key)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.Cleanup(context.WithoutCancel(ctx), written)
		return nil, apperr.Wrap(apperr.CodeStorageUnavailable, err)
	}
	return written, nil
}

// Key returns the storage key for an attachment name.
func (s *Synchronizer) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Cleanup removes blobs that will never be referenced (for example after a failed commit).
// Failures are logged and otherwise ignored; orphaned blobs are safe to collect later.
func (s *Synchronizer) Cleanup(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			s.log.Warn("attachment_orphan_cleanup_failed", "key", k, "error", err)
		}
	}
}
