package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/attachment"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/repository/memory"
	storeMocks "github.com/jasonhew98/e-commerce-service/internal/storage/mocks"
)

func TestUserService(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	mStore := new(storeMocks.MockStorage)
	acceptPuts(mStore)
	svc := NewUserService(users, attachment.NewSynchronizer(mStore, "profile-pictures"), testCipher(t), logger.Nop())
	actor := model.Actor{ID: "admin", Name: "Admin"}

	id, err := svc.Add(ctx, AddUserCommand{
		UserName: "jane", FullName: "Jane", Email: "j@x.com", Password: "p1",
		ProfilePictures: []attachment.Item{newItem("me.png", "image/png")},
		Actor:           actor,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "j@x.com", got.Email)
	assert.Equal(t, "jane", got.UserName)
	require.Len(t, got.ProfilePictures, 1)

	t.Run("update drops omitted and unknown pictures", func(t *testing.T) {
		_, err := svc.Update(ctx, UpdateUserCommand{
			UserID: id, FullName: "Jane Doe", Email: "jd@x.com",
			ProfilePictures: []attachment.Item{{AttachmentID: "does-not-exist"}},
			ModifiedAtUTC:   got.ModifiedAtUTC,
			Actor:           actor,
		})
		require.NoError(t, err)

		after, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", after.FullName)
		assert.Equal(t, "jd@x.com", after.Email)
		assert.Equal(t, "jane", after.UserName)
		assert.Empty(t, after.ProfilePictures)

		stored, _, err := users.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "admin", stored.ModifiedBy)
	})

	t.Run("invalid picture on update", func(t *testing.T) {
		cur, err := svc.Get(ctx, id)
		require.NoError(t, err)

		_, err = svc.Update(ctx, UpdateUserCommand{
			UserID: id, FullName: "X", Email: "x@x.com",
			ProfilePictures: []attachment.Item{newItem("a.tiff", "image/tiff")},
			ModifiedAtUTC:   cur.ModifiedAtUTC,
		})
		requireCode(t, err, apperr.CodeUpdateUserInvalidFileType)
	})

	t.Run("page size", func(t *testing.T) {
		ps, err := svc.PageSize(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, ps.TotalPages)
	})
}
