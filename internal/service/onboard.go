package service

import (
	"context"
	"errors"
	"time"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/repository"
)

type SignUpCommand struct {
	UserName string
	FullName string
	Email    string
	Password string
}

type LoginCommand struct {
	UserName string
	Password string
}

type LoginResult struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	FullName string `json:"full_name"`
}

// OnboardService signs users up and checks their passwords. It issues no sessions.
type OnboardService interface {
	SignUp(ctx context.Context, cmd SignUpCommand) (string, error)
	Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error)
}

type onboardService struct {
	users  repository.Store[*model.User]
	cipher PIICipher
	log    *logger.Logger
	now    func() time.Time
}

func NewOnboardService(users repository.Store[*model.User], cipher PIICipher, log *logger.Logger) OnboardService {
	return &onboardService{users: users, cipher: cipher, log: log, now: time.Now}
}

// SignUp rejects a user name or email that is already registered. Emails are compared by
// ciphertext, which works because encryption is deterministic.
func (s *onboardService) SignUp(ctx context.Context, cmd SignUpCommand) (string, error) {
	if err := required("user_name", cmd.UserName, "full_name", cmd.FullName, "email", cmd.Email, "password", cmd.Password); err != nil {
		return "", err
	}

	u := &model.User{
		UserID:    model.NewID(),
		UserName:  cmd.UserName,
		FullName:  cmd.FullName,
		Email:     cmd.Email,
		Password:  cmd.Password,
		AuditInfo: model.NewAuditInfo(model.SystemActor, s.now()),
	}
	if err := encryptAll(s.cipher, &u.Email, &u.Password); err != nil {
		return "", err
	}

	for _, f := range []repository.Filter{
		{Field: "user_name", Value: u.UserName},
		{Field: "email", Value: u.Email},
	} {
		_, err := s.users.FindOne(ctx, f)
		if err == nil {
			return "", apperr.New(apperr.CodeUserAlreadyExist)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return "", storeError(err, "")
		}
	}

	if err := s.users.Insert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", apperr.Wrap(apperr.CodeUserAlreadyExist, err)
		}
		s.log.Error("sign_up_failed", "user_name", u.UserName, "error", err)
		return "", storeError(err, "")
	}
	s.log.Info("user_signed_up", "user_id", u.UserID)
	return u.UserID, nil
}

func (s *onboardService) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if err := required("user_name", cmd.UserName, "password", cmd.Password); err != nil {
		return nil, err
	}

	u, err := s.users.FindOne(ctx, repository.Filter{Field: "user_name", Value: cmd.UserName})
	if err != nil {
		return nil, storeError(err, "User")
	}
	ok, err := s.cipher.Matches(cmd.Password, u.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, err)
	}
	if !ok {
		return nil, apperr.New(apperr.CodeIncorrectPassword)
	}
	return &LoginResult{UserID: u.UserID, UserName: u.UserName, FullName: u.FullName}, nil
}
