package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
	"github.com/jasonhew98/e-commerce-service/internal/repository"
	"github.com/jasonhew98/e-commerce-service/internal/repository/memory"
)

func TestOnboardService(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	c := testCipher(t)
	svc := NewOnboardService(users, c, logger.Nop())

	id, err := svc.SignUp(ctx, SignUpCommand{UserName: "jane", FullName: "Jane", Email: "j@x.com", Password: "p1"})
	require.NoError(t, err)

	stored, err := users.FindOne(ctx, repository.Filter{Field: "user_name", Value: "jane"})
	require.NoError(t, err)
	assert.Equal(t, id, stored.UserID)
	assert.NotEqual(t, "j@x.com", stored.Email)
	assert.NotEqual(t, "p1", stored.Password)

	t.Run("duplicate user name", func(t *testing.T) {
		_, err := svc.SignUp(ctx, SignUpCommand{UserName: "jane", FullName: "Other", Email: "o@x.com", Password: "p"})
		requireCode(t, err, apperr.CodeUserAlreadyExist)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.SignUp(ctx, SignUpCommand{UserName: "jane2", FullName: "Other", Email: "j@x.com", Password: "p"})
		requireCode(t, err, apperr.CodeUserAlreadyExist)
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := svc.SignUp(ctx, SignUpCommand{UserName: "x", Email: "x@x.com", Password: "p"})
		requireCode(t, err, apperr.CodeValidation)
	})

	t.Run("login", func(t *testing.T) {
		res, err := svc.Login(ctx, LoginCommand{UserName: "jane", Password: "p1"})
		require.NoError(t, err)
		assert.Equal(t, id, res.UserID)
		assert.Equal(t, "Jane", res.FullName)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginCommand{UserName: "jane", Password: "nope"})
		requireCode(t, err, apperr.CodeIncorrectPassword)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginCommand{UserName: "ghost", Password: "p1"})
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}
