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

type AddProductCommand struct {
	ProductName   string
	ProductPrice  float64
	ProductImages []attachment.Item
	Actor         model.Actor
}

type UpdateProductCommand struct {
	ProductID     string
	ProductName   string
	ProductPrice  float64
	ProductImages []attachment.Item
	ModifiedAtUTC time.Time
	Actor         model.Actor
}

type ProductSummary struct {
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	ProductPrice  float64   `json:"product_price"`
	ModifiedAtUTC time.Time `json:"modified_at_utc"`
}

type ProductDetail struct {
	ProductID     string             `json:"product_id"`
	ProductName   string             `json:"product_name"`
	ProductPrice  float64            `json:"product_price"`
	ProductImages []model.Attachment `json:"product_images"`
	ModifiedAtUTC time.Time          `json:"modified_at_utc"`
}

type ProductService interface {
	Add(ctx context.Context, cmd AddProductCommand) (string, error)
	Update(ctx context.Context, cmd UpdateProductCommand) (*Updated, error)
	Get(ctx context.Context, id string) (*ProductDetail, error)
	List(ctx context.Context, q ListQuery) ([]ProductSummary, error)
	PageSize(ctx context.Context, pageSize int) (*PageSize, error)
}

type productService struct {
	store repository.Store[*model.Product]
	sync  AttachmentReconciler
	log   *logger.Logger
	now   func() time.Time
}

func NewProductService(store repository.Store[*model.Product], sync AttachmentReconciler, log *logger.Logger) ProductService {
	return &productService{store: store, sync: sync, log: log, now: time.Now}
}

func validPrice(p float64) error {
	if p < 0 {
		return apperr.Validation("product_price must not be negative")
	}
	return nil
}

func (s *productService) Add(ctx context.Context, cmd AddProductCommand) (string, error) {
	if err := required("product_name", cmd.ProductName); err != nil {
		return "", err
	}
	if err := validPrice(cmd.ProductPrice); err != nil {
		return "", err
	}

	res, err := reconcile(ctx, s.sync, nil, cmd.ProductImages, apperr.CodeCreateProductInvalidFileType)
	if err != nil {
		return "", err
	}
	p := &model.Product{
		ProductID:     model.NewID(),
		ProductName:   cmd.ProductName,
		ProductPrice:  cmd.ProductPrice,
		ProductImages: res.Attachments,
		AuditInfo:     model.NewAuditInfo(actorOrSystem(cmd.Actor), s.now()),
	}

	if err := commitInsert(ctx, s.store, s.sync, s.log, p, res.Written, apperr.CodeUnknown); err != nil {
		return "", err
	}
	s.log.Info("product_created", "product_id", p.ProductID, "actor", p.CreatedBy)
	return p.ProductID, nil
}

func (s *productService) Update(ctx context.Context, cmd UpdateProductCommand) (*Updated, error) {
	if err := required("product_id", cmd.ProductID, "product_name", cmd.ProductName); err != nil {
		return nil, err
	}
	if err := validPrice(cmd.ProductPrice); err != nil {
		return nil, err
	}
	if cmd.ModifiedAtUTC.IsZero() {
		return nil, apperr.Validation("modified_at_utc is required")
	}

	p, token, err := loadForUpdate(ctx, s.store, cmd.ProductID, cmd.ModifiedAtUTC, "Product")
	if err != nil {
		return nil, err
	}

	res, err := reconcile(ctx, s.sync, p.ProductImages, cmd.ProductImages, apperr.CodeUpdateProductInvalidFileType)
	if err != nil {
		return nil, err
	}
	p.UpdateDetails(model.Product{
		ProductName:   cmd.ProductName,
		ProductPrice:  cmd.ProductPrice,
		ProductImages: res.Attachments,
	})

	if err := commitUpdate(ctx, s.store, s.sync, s.log, p, token, actorOrSystem(cmd.Actor), res.Written); err != nil {
		return nil, err
	}
	return &Updated{ID: p.ProductID, ModifiedAtUTC: p.ModifiedAtUTC}, nil
}

func (s *productService) Get(ctx context.Context, id string) (*ProductDetail, error) {
	if id == "" {
		return nil, apperr.Validation("product_id is required")
	}
	p, _, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, storeError(err, "Product")
	}
	return &ProductDetail{
		ProductID:     p.ProductID,
		ProductName:   p.ProductName,
		ProductPrice:  p.ProductPrice,
		ProductImages: nonNil(p.ProductImages),
		ModifiedAtUTC: p.ModifiedAtUTC,
	}, nil
}

func (s *productService) List(ctx context.Context, q ListQuery) ([]ProductSummary, error) {
	return listPage(ctx, s.store, q, func(p *model.Product) (ProductSummary, error) {
		return ProductSummary{
			ProductID:     p.ProductID,
			ProductName:   p.ProductName,
			ProductPrice:  p.ProductPrice,
			ModifiedAtUTC: p.ModifiedAtUTC,
		}, nil
	})
}

func (s *productService) PageSize(ctx context.Context, pageSize int) (*PageSize, error) {
	return countPages(ctx, s.store, pageSize)
}
