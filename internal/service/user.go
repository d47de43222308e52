package service

import (
	"context"
	"time"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/attachment"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/repository"
)

type AddUserCommand struct {
	UserName        string
	FullName        string
	Email           string
	Password        string
	ProfilePictures []attachment.Item
	Actor           model.Actor
}

// UpdateUserCommand changes a user's details. The user name is fixed at creation.
type UpdateUserCommand struct {
	UserID          string
	FullName        string
	Email           string
	ProfilePictures []attachment.Item
	ModifiedAtUTC   time.Time
	Actor           model.Actor
}

type UserSummary struct {
	UserID        string    `json:"user_id"`
	UserName      string    `json:"user_name"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	ModifiedAtUTC time.Time `json:"modified_at_utc"`
}

type UserDetail struct {
	UserID          string             `json:"user_id"`
	UserName        string             `json:"user_name"`
	FullName        string             `json:"full_name"`
	Email           string             `json:"email"`
	ProfilePictures []model.Attachment `json:"profile_pictures"`
	ModifiedAtUTC   time.Time          `json:"modified_at_utc"`
}

type UserService interface {
	Add(ctx context.Context, cmd AddUserCommand) (string, error)
	Update(ctx context.Context, cmd UpdateUserCommand) (*Updated, error)
	Get(ctx context.Context, id string) (*UserDetail, error)
	List(ctx context.Context, q ListQuery) ([]UserSummary, error)
	PageSize(ctx context.Context, pageSize int) (*PageSize, error)
}

type userService struct {
	store  repository.Store[*model.User]
	sync   AttachmentReconciler
	cipher PIICipher
	log    *logger.Logger
	now    func() time.Time
}

func NewUserService(store repository.Store[*model.User], sync AttachmentReconciler, cipher PIICipher, log *logger.Logger) UserService {
	return &userService{store: store, sync: sync, cipher: cipher, log: log, now: time.Now}
}

func (s *userService) Add(ctx context.Context, cmd AddUserCommand) (string, error) {
	if err := required("full_name", cmd.FullName, "email", cmd.Email, "password", cmd.Password); err != nil {
		return "", err
	}

	u := &model.User{
		UserID:    model.NewID(),
		UserName:  cmd.UserName,
		FullName:  cmd.FullName,
		Email:     cmd.Email,
		Password:  cmd.Password,
		AuditInfo: model.NewAuditInfo(actorOrSystem(cmd.Actor), s.now()),
	}
	if err := encryptAll(s.cipher, &u.Email, &u.Password); err != nil {
		return "", err
	}

	res, err := reconcile(ctx, s.sync, nil, cmd.ProfilePictures, apperr.CodeCreateUserInvalidFileType)
	if err != nil {
		return "", err
	}
	u.ProfilePictures = res.Attachments

	if err := commitInsert(ctx, s.store, s.sync, s.log, u, res.Written, apperr.CodeUserAlreadyExist); err != nil {
		return "", err
	}
	s.log.Info("user_created", "user_id", u.UserID, "actor", u.CreatedBy)
	return u.UserID, nil
}

func (s *userService) Update(ctx context.Context, cmd UpdateUserCommand) (*Updated, error) {
	if err := required("user_id", cmd.UserID, "full_name", cmd.FullName, "email", cmd.Email); err != nil {
		return nil, err
	}
	if cmd.ModifiedAtUTC.IsZero() {
		return nil, apperr.Validation("modified_at_utc is required")
	}

	u, token, err := loadForUpdate(ctx, s.store, cmd.UserID, cmd.ModifiedAtUTC, "User")
	if err != nil {
		return nil, err
	}

	details := model.User{UserName: u.UserName, FullName: cmd.FullName, Email: cmd.Email}
	if err := encryptAll(s.cipher, &details.Email); err != nil {
		return nil, err
	}

	res, err := reconcile(ctx, s.sync, u.ProfilePictures, cmd.ProfilePictures, apperr.CodeUpdateUserInvalidFileType)
	if err != nil {
		return nil, err
	}
	details.ProfilePictures = res.Attachments
	u.UpdateDetails(details)

	if err := commitUpdate(ctx, s.store, s.sync, s.log, u, token, actorOrSystem(cmd.Actor), res.Written); err != nil {
		return nil, err
	}
	return &Updated{ID: u.UserID, ModifiedAtUTC: u.ModifiedAtUTC}, nil
}

func (s *userService) Get(ctx context.Context, id string) (*UserDetail, error) {
	if id == "" {
		return nil, apperr.Validation("user_id is required")
	}
	u, _, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, storeError(err, "User")
	}
	email, err := s.cipher.Decrypt(u.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, err)
	}
	return &UserDetail{
		UserID:          u.UserID,
		UserName:        u.UserName,
		FullName:        u.FullName,
		Email:           email,
		ProfilePictures: nonNil(u.ProfilePictures),
		ModifiedAtUTC:   u.ModifiedAtUTC,
	}, nil
}

func (s *userService) List(ctx context.Context, q ListQuery) ([]UserSummary, error) {
	return listPage(ctx, s.store, q, func(u *model.User) (UserSummary, error) {
		email, err := s.cipher.Decrypt(u.Email)
		if err != nil {
			return UserSummary{}, apperr.Wrap(apperr.CodeUnknown, err)
		}
		return UserSummary{
			UserID:        u.UserID,
			UserName:      u.UserName,
			FullName:      u.FullName,
			Email:         email,
			ModifiedAtUTC: u.ModifiedAtUTC,
		}, nil
	})
}

func (s *userService) PageSize(ctx context.Context, pageSize int) (*PageSize, error) {
	return countPages(ctx, s.store, pageSize)
}
