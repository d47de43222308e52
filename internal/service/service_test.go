package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/attachment"
	"github.com/jasonhew98/e-commerce-service/internal/encryption"
	"github.com/jasonhew98/e-commerce-service/internal/storage"
	storeMocks "github.com/jasonhew98/e-commerce-service/internal/storage/mocks"
)

func testCipher(t *testing.T) *encryption.Cipher {
	t.Helper()
	c, err := encryption.NewCipher(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	return c
}

func mustEncrypt(t *testing.T, c *encryption.Cipher, s string) string {
	t.Helper()
	out, err := c.Encrypt(s)
	require.NoError(t, err)
	return out
}

func newItem(name, blobType string) attachment.Item {
	return attachment.Item{FileName: name, Base64: base64.StdEncoding.EncodeToString([]byte("img")), BlobType: blobType}
}

// acceptPuts makes every blob write succeed.
func acceptPuts(m *storeMocks.MockStorage) {
	m.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(func(_ context.Context, key string, _ io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
			return storage.ObjectInfo{Key: key}
		}, nil)
}

func requireCode(t *testing.T, err error, code apperr.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apperr.As(err).Code, "error: %v", err)
}
