package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/storage"
	storeMocks "github.com/jasonhew98/e-commerce-service/internal/storage/mocks"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestReconcile_InvalidTypeWritesNothing(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	s := NewSynchronizer(mStore, "profile-pictures", WithIDGenerator(sequentialIDs()))

	incoming := []Item{
		{FileName: "a.png", Base64: b64("png"), BlobType: "image/png"},
		{FileName: "b.gif", Base64: b64("gif"), BlobType: "image/gif"},
	}

	res, err := s.Reconcile(ctx, nil, incoming)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidType)
	mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_InvalidPayloadWritesNothing(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	s := NewSynchronizer(mStore, "p")

	_, err := s.Reconcile(ctx, nil, []Item{
		{FileName: "a.png", Base64: b64("ok"), BlobType: "image/png"},
		{FileName: "b.png", Base64: "%%%not-base64", BlobType: "image/png"},
	})

	assert.ErrorIs(t, err, ErrInvalidPayload)
	mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_KeepsExistingAndAddsNewInOrder(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	s := NewSynchronizer(mStore, "product-images", WithIDGenerator(sequentialIDs()), WithConcurrency(1))

	existing := []model.Attachment{
		{AttachmentID: "keep1", Name: "keep1-front.png", BlobType: "image/png"},
		{AttachmentID: "gone", Name: "gone-back.png", BlobType: "image/png"},
	}
	incoming := []Item{
		{FileName: "side.jpg", Base64: b64("jpegdata"), BlobType: "image/jpeg"},
		{AttachmentID: "keep1"},
		{AttachmentID: "missing"},
		{FileName: "top.png", Base64: b64("pngdata"), BlobType: "image/png"},
	}

	payloads := map[string]string{}
	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			b, _ := io.ReadAll(args.Get(2).(io.Reader))
			payloads[args.String(1)] = string(b)
		}).
		Return(func(_ context.Context, key string, _ io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
			return storage.ObjectInfo{Key: key, ContentType: opt.ContentType}
		}, nil)

	res, err := s.Reconcile(ctx, existing, incoming)
	require.NoError(t, err)

	assert.Equal(t, []model.Attachment{
		{AttachmentID: "id1", Name: "id1-side.jpg", BlobType: "image/jpeg"},
		{AttachmentID: "keep1", Name: "keep1-front.png", BlobType: "image/png"},
		{AttachmentID: "id2", Name: "id2-top.png", BlobType: "image/png"},
	}, res.Attachments)
	assert.ElementsMatch(t, []string{"product-images/id1-side.jpg", "product-images/id2-top.png"}, res.Written)
	assert.Equal(t, "jpegdata", payloads["product-images/id1-side.jpg"])
	assert.Equal(t, "pngdata", payloads["product-images/id2-top.png"])
	mStore.AssertNumberOfCalls(t, "Put", 2)
}

func TestReconcile_RepeatedKeepIDKeptOnce(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	s := NewSynchronizer(mStore, "p")

	existing := []model.Attachment{
		{AttachmentID: "a1", Name: "a1-x.png", BlobType: "image/png"},
		{AttachmentID: "a2", Name: "a2-y.png", BlobType: "image/png"},
	}
	res, err := s.Reconcile(context.Background(), existing, []Item{
		{AttachmentID: "a1"},
		{AttachmentID: "a2"},
		{AttachmentID: "a1"},
	})

	require.NoError(t, err)
	assert.Equal(t, existing, res.Attachments)
	assert.Empty(t, res.Written)
	mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_EmptyIncomingClearsList(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	s := NewSynchronizer(mStore, "p")

	res, err := s.Reconcile(context.Background(), []model.Attachment{{AttachmentID: "x"}}, nil)

	require.NoError(t, err)
	assert.Empty(t, res.Attachments)
	assert.Empty(t, res.Written)
}

func TestReconcile_WriteFailureCleansUpAndReportsStorage(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	s := NewSynchronizer(mStore, "p", WithIDGenerator(sequentialIDs()), WithConcurrency(1))

	mStore.On("Put", mock.Anything, "p/id1-a.png", mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "p/id1-a.png"}, nil)
	mStore.On("Put", mock.Anything, "p/id2-b.png", mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, storage.ErrUnavailable)
	mStore.On("Delete", mock.Anything, "p/id1-a.png").Return(nil).Maybe()

	_, err := s.Reconcile(ctx, nil, []Item{
		{FileName: "a.png", Base64: b64("a"), BlobType: "image/png"},
		{FileName: "b.png", Base64: b64("b"), BlobType: "image/png"},
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindStorageUnavailable, apperr.KindOf(err))
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestCleanup_IgnoresDeleteErrors(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	s := NewSynchronizer(mStore, "p")

	mStore.On("Delete", ctx, "p/a").Return(errors.New("boom"))
	mStore.On("Delete", ctx, "p/b").Return(nil)

	s.Cleanup(ctx, []string{"p/a", "p/b"})

	mStore.AssertExpectations(t)
}

func TestIsAllowedType(t *testing.T) {
	assert.True(t, IsAllowedType("image/jpg"))
	assert.True(t, IsAllowedType("image/jpeg"))
	assert.True(t, IsAllowedType("image/png"))
	assert.False(t, IsAllowedType("image/gif"))
	assert.False(t, IsAllowedType(""))
}
