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

type AddAccountCommand struct {
	FullName        string
	Email           string
	Password        string
	ProfilePictures []attachment.Item
	Actor           model.Actor
}

// UpdateAccountCommand replaces the account's details. ModifiedAtUTC is the value the client last
// read; the update is rejected if the account changed since.
type UpdateAccountCommand struct {
	AccountID       string
	FullName        string
	Email           string
	ProfilePictures []attachment.Item
	ModifiedAtUTC   time.Time
	Actor           model.Actor
}

type AccountSummary struct {
	AccountID     string    `json:"account_id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	ModifiedAtUTC time.Time `json:"modified_at_utc"`
}

type AccountDetail struct {
	AccountID       string             `json:"account_id"`
	FullName        string             `json:"full_name"`
	Email           string             `json:"email"`
	ProfilePictures []model.Attachment `json:"profile_pictures"`
	ModifiedAtUTC   time.Time          `json:"modified_at_utc"`
}

// AccountService defines the use cases for customer accounts.
type AccountService interface {
	// Add creates an account. Profile pictures are written to storage before the account is stored.
	Add(ctx context.Context, cmd AddAccountCommand) (string, error)
	Update(ctx context.Context, cmd UpdateAccountCommand) (*Updated, error)
	Get(ctx context.Context, id string) (*AccountDetail, error)
	List(ctx context.Context, q ListQuery) ([]AccountSummary, error)
	PageSize(ctx context.Context, pageSize int) (*PageSize, error)
}

type accountService struct {
	store  repository.Store[*model.Account]
	sync   AttachmentReconciler
	cipher PIICipher
	log    *logger.Logger
	now    func() time.Time
}

func NewAccountService(store repository.Store[*model.Account], sync AttachmentReconciler, cipher PIICipher, log *logger.Logger) AccountService {
	return &accountService{store: store, sync: sync, cipher: cipher, log: log, now: time.Now}
}

func (s *accountService) Add(ctx context.Context, cmd AddAccountCommand) (string, error) {
	if err := required("full_name", cmd.FullName, "email", cmd.Email, "password", cmd.Password); err != nil {
		return "", err
	}

	acc := &model.Account{
		AccountID: model.NewID(),
		FullName:  cmd.FullName,
		Email:     cmd.Email,
		Password:  cmd.Password,
		AuditInfo: model.NewAuditInfo(actorOrSystem(cmd.Actor), s.now()),
	}
	if err := encryptAll(s.cipher, &acc.Email, &acc.Password); err != nil {
		return "", err
	}

	res, err := reconcile(ctx, s.sync, nil, cmd.ProfilePictures, apperr.CodeCreateAccountInvalidFileType)
	if err != nil {
		return "", err
	}
	acc.ProfilePictures = res.Attachments

	if err := commitInsert(ctx, s.store, s.sync, s.log, acc, res.Written, apperr.CodeUnknown); err != nil {
		return "", err
	}
	s.log.Info("account_created", "account_id", acc.AccountID, "actor", acc.CreatedBy)
	return acc.AccountID, nil
}

func (s *accountService) Update(ctx context.Context, cmd UpdateAccountCommand) (*Updated, error) {
	if err := required("account_id", cmd.AccountID, "full_name", cmd.FullName, "email", cmd.Email); err != nil {
		return nil, err
	}
	if cmd.ModifiedAtUTC.IsZero() {
		return nil, apperr.Validation("modified_at_utc is required")
	}

	acc, token, err := loadForUpdate(ctx, s.store, cmd.AccountID, cmd.ModifiedAtUTC, "Account")
	if err != nil {
		return nil, err
	}

	details := model.Account{FullName: cmd.FullName, Email: cmd.Email}
	if err := encryptAll(s.cipher, &details.Email); err != nil {
		return nil, err
	}

	res, err := reconcile(ctx, s.sync, acc.ProfilePictures, cmd.ProfilePictures, apperr.CodeUpdateAccountInvalidFileType)
	if err != nil {
		return nil, err
	}
	details.ProfilePictures = res.Attachments
	acc.UpdateDetails(details)

	if err := commitUpdate(ctx, s.store, s.sync, s.log, acc, token, actorOrSystem(cmd.Actor), res.Written); err != nil {
		return nil, err
	}
	return &Updated{ID: acc.AccountID, ModifiedAtUTC: acc.ModifiedAtUTC}, nil
}

func (s *accountService) Get(ctx context.Context, id string) (*AccountDetail, error) {
	if id == "" {
		return nil, apperr.Validation("account_id is required")
	}
	acc, _, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, storeError(err, "Account")
	}
	email, err := s.cipher.Decrypt(acc.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, err)
	}
	return &AccountDetail{
		AccountID:       acc.AccountID,
		FullName:        acc.FullName,
		Email:           email,
		ProfilePictures: nonNil(acc.ProfilePictures),
		ModifiedAtUTC:   acc.ModifiedAtUTC,
	}, nil
}

func (s *accountService) List(ctx context.Context, q ListQuery) ([]AccountSummary, error) {
	return listPage(ctx, s.store, q, func(acc *model.Account) (AccountSummary, error) {
		email, err := s.cipher.Decrypt(acc.Email)
		if err != nil {
			return AccountSummary{}, apperr.Wrap(apperr.CodeUnknown, err)
		}
		return AccountSummary{
			AccountID:     acc.AccountID,
			FullName:      acc.FullName,
			Email:         email,
			ModifiedAtUTC: acc.ModifiedAtUTC,
		}, nil
	})
}

func (s *accountService) PageSize(ctx context.Context, pageSize int) (*PageSize, error) {
	return countPages(ctx, s.store, pageSize)
}

func nonNil(a []model.Attachment) []model.Attachment {
	if a == nil {
		return []model.Attachment{}
	}
	return a
}
