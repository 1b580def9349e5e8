package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	categorydomain "github.com/bondexsafety/backoffice/internal/catalog/category/domain"
	"github.com/bondexsafety/backoffice/internal/catalog/product/domain"
	"github.com/bondexsafety/backoffice/internal/clock"
	"github.com/bondexsafety/backoffice/internal/media"
	"github.com/bondexsafety/backoffice/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	CategoryRepo categorydomain.Repository
	Storage      media.Storage
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	categoryRepo categorydomain.Repository
	storage      media.Storage
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("product.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		categoryRepo: p.CategoryRepo,
		storage:      p.Storage,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}
	if req.SalePrice != nil && (*req.SalePrice < 0 || *req.SalePrice >= req.Price) {
		return nil, domain.ErrInvalidSalePrice
	}
	if req.Stock < 0 {
		return nil, domain.ErrInvalidStock
	}

	status := domain.ProductStatus(strings.TrimSpace(req.Status))
	if status == "" {
		status = domain.StatusDraft
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	var categoryID *int64
	if req.CategoryID != nil && strings.TrimSpace(*req.CategoryID) != "" {
		id, err := s.resolveCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryID = &id
	}

	productSlug, err := s.uniqueSlug(ctx, name, 0)
	if err != nil {
		return nil, err
	}

	lowStockAt := int64(5)
	if req.LowStockAt != nil && *req.LowStockAt >= 0 {
		lowStockAt = *req.LowStockAt
	}

	now := s.clock.Now()
	p := &domain.Product{
		ID:              s.genID.Generate().Int64(),
		Name:            name,
		Slug:            productSlug,
		Description:     strings.TrimSpace(req.Description),
		Brand:           strings.TrimSpace(req.Brand),
		CategoryID:      categoryID,
		Price:           req.Price,
		SalePrice:       req.SalePrice,
		SaleEndsAt:      req.SaleEndsAt,
		Stock:           req.Stock,
		LowStockAt:      lowStockAt,
		Status:          status,
		Images:          datatypes.NewJSONSlice(req.Images),
		MetaTitle:       strings.TrimSpace(req.MetaTitle),
		MetaDescription: strings.TrimSpace(req.MetaDescription),
		Keywords:        datatypes.NewJSONSlice(req.Keywords),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	p.DeriveStatus()

	if err := s.repo.Create(ctx, s.db, p); err != nil {
		return nil, err
	}

	resp := s.toResponse(p)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

// GetBySlug serves the public catalog and counts the view.
func (s *Service) GetBySlug(ctx context.Context, productSlug string) (*domain.Response, error) {
	item, err := s.repo.FindBySlug(ctx, s.db, strings.TrimSpace(productSlug))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if err := s.repo.IncrementViews(ctx, s.db, item.ID); err != nil {
		s.log.Warn("failed to count product view", zap.Int64("product_id", item.ID), zap.Error(err))
	} else {
		item.Views++
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, *pagination.PageInfo, error) {
	filter := domain.ListFilter{
		Search:   strings.TrimSpace(req.Search),
		LowStock: req.LowStock,
		SortBy:   strings.TrimSpace(req.SortBy),
		OrderBy:  strings.TrimSpace(req.OrderBy),
		Page:     req.Page.Normalize(),
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		if !domain.ProductStatus(status).Valid() {
			return nil, nil, domain.ErrInvalidStatus
		}
		filter.Status = domain.ProductStatus(status)
	}
	if raw := strings.TrimSpace(req.CategoryID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, nil, domain.ErrInvalidID
		}
		value := id.Int64()
		filter.CategoryID = &value
	}

	items, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	info := filter.Page.PageInfo(total)
	return resp, &info, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		if name != item.Name {
			newSlug, err := s.uniqueSlug(ctx, name, item.ID)
			if err != nil {
				return nil, err
			}
			item.Slug = newSlug
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Brand != nil {
		item.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.CategoryID != nil {
		if strings.TrimSpace(*req.CategoryID) == "" {
			item.CategoryID = nil
		} else {
			id, err := s.resolveCategory(ctx, *req.CategoryID)
			if err != nil {
				return nil, err
			}
			item.CategoryID = &id
		}
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, domain.ErrInvalidPrice
		}
		item.Price = *req.Price
	}
	if req.ClearSale {
		item.SalePrice = nil
		item.SaleEndsAt = nil
	} else if req.SalePrice != nil {
		if *req.SalePrice < 0 || *req.SalePrice >= item.Price {
			return nil, domain.ErrInvalidSalePrice
		}
		item.SalePrice = req.SalePrice
		item.SaleEndsAt = req.SaleEndsAt
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, domain.ErrInvalidStock
		}
		item.Stock = *req.Stock
	}
	if req.LowStockAt != nil && *req.LowStockAt >= 0 {
		item.LowStockAt = *req.LowStockAt
	}
	if req.Status != nil {
		status := domain.ProductStatus(strings.TrimSpace(*req.Status))
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		item.Status = status
	}
	if req.MetaTitle != nil {
		item.MetaTitle = strings.TrimSpace(*req.MetaTitle)
	}
	if req.MetaDescription != nil {
		item.MetaDescription = strings.TrimSpace(*req.MetaDescription)
	}
	if req.Keywords != nil {
		item.Keywords = datatypes.NewJSONSlice(req.Keywords)
	}

	item.DeriveStatus()
	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, item.ID); err != nil {
		return err
	}

	// Image cleanup is best-effort: a failed delete never rolls back the
	// product removal.
	for _, url := range item.Images {
		if err := s.storage.Delete(ctx, url); err != nil {
			s.log.Warn("failed to delete product image",
				zap.Int64("product_id", item.ID),
				zap.String("image", url),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *Service) AttachImage(ctx context.Context, id string, url string) (*domain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Images = append(item.Images, url)
	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) resolveCategory(ctx context.Context, raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrCategoryNotFound
	}
	category, err := s.categoryRepo.FindByID(ctx, s.db, id.Int64())
	if err != nil {
		return 0, err
	}
	if category == nil {
		return 0, domain.ErrCategoryNotFound
	}
	return category.ID, nil
}

// uniqueSlug derives a slug from name, suffixing -2, -3, ... when taken.
// excludeID skips the product being renamed.
func (s *Service) uniqueSlug(ctx context.Context, name string, excludeID int64) (string, error) {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		existing, err := s.repo.FindBySlug(ctx, s.db, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil || existing.ID == excludeID {
			return candidate, nil
		}
		if existing.Name == name && excludeID == 0 {
			return "", domain.ErrNameTaken
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *Service) toResponse(p *domain.Product) domain.Response {
	resp := domain.Response{
		ID:              snowflake.ID(p.ID).String(),
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		Brand:           p.Brand,
		Price:           p.Price,
		SalePrice:       p.SalePrice,
		SaleEndsAt:      p.SaleEndsAt,
		EffectivePrice:  p.EffectivePrice(s.clock.Now()),
		Stock:           p.Stock,
		LowStockAt:      p.LowStockAt,
		LowStock:        p.Stock <= p.LowStockAt,
		Status:          string(p.Status),
		Images:          p.Images,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		Keywords:        p.Keywords,
		Views:           p.Views,
		Sales:           p.Sales,
		Rating:          p.Rating,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.CategoryID != nil {
		id := snowflake.ID(*p.CategoryID).String()
		resp.CategoryID = &id
	}
	return resp
}
