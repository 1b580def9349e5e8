package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/bondexsafety/backoffice/internal/catalog/category/domain"
	productdomain "github.com/bondexsafety/backoffice/internal/catalog/product/domain"
	"github.com/bondexsafety/backoffice/internal/clock"
	"github.com/bondexsafety/backoffice/internal/media"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	ProductRepo productdomain.Repository
	Storage     media.Storage
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	productRepo productdomain.Repository
	storage     media.Storage
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("category.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		productRepo: p.ProductRepo,
		storage:     p.Storage,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	categoryType := domain.CategoryType(strings.TrimSpace(req.Type))
	if !categoryType.Valid() {
		return nil, domain.ErrInvalidType
	}

	existing, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrNameTaken
	}

	var parentID *int64
	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(*req.ParentID))
		if err != nil {
			return nil, domain.ErrParentNotFound
		}
		parent, err := s.repo.FindByID(ctx, s.db, id.Int64())
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, domain.ErrParentNotFound
		}
		// One level of nesting only.
		if parent.ParentID != nil {
			return nil, domain.ErrNestedParent
		}
		value := parent.ID
		parentID = &value
	}

	now := s.clock.Now()
	c := &domain.Category{
		ID:              s.genID.Generate().Int64(),
		Name:            name,
		Slug:            slug.Make(name),
		Description:     strings.TrimSpace(req.Description),
		Type:            categoryType,
		ParentID:        parentID,
		Icon:            strings.TrimSpace(req.Icon),
		Color:           strings.TrimSpace(req.Color),
		Status:          domain.StatusActive,
		SortOrder:       req.SortOrder,
		MetaTitle:       strings.TrimSpace(req.MetaTitle),
		MetaDescription: strings.TrimSpace(req.MetaDescription),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, s.db, c); err != nil {
		return nil, err
	}

	resp := s.toResponse(c)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, categoryID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{RootOnly: req.RootOnly}

	if raw := strings.TrimSpace(req.Type); raw != "" {
		if !domain.CategoryType(raw).Valid() {
			return nil, domain.ErrInvalidType
		}
		filter.Type = domain.CategoryType(raw)
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		if !domain.CategoryStatus(raw).Valid() {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = domain.CategoryStatus(raw)
	}
	if raw := strings.TrimSpace(req.ParentID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		value := id.Int64()
		filter.ParentID = &value
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, categoryID.Int64())
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
		if !strings.EqualFold(name, item.Name) {
			existing, err := s.repo.FindByName(ctx, s.db, name)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != item.ID {
				return nil, domain.ErrNameTaken
			}
			item.Slug = slug.Make(name)
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Icon != nil {
		old := item.Icon
		item.Icon = strings.TrimSpace(*req.Icon)
		if old != "" && old != item.Icon {
			if err := s.storage.Delete(ctx, old); err != nil {
				s.log.Warn("failed to delete category icon",
					zap.Int64("category_id", item.ID),
					zap.String("icon", old),
					zap.Error(err),
				)
			}
		}
	}
	if req.Color != nil {
		item.Color = strings.TrimSpace(*req.Color)
	}
	if req.Status != nil {
		status := domain.CategoryStatus(strings.TrimSpace(*req.Status))
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		item.Status = status
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	if req.MetaTitle != nil {
		item.MetaTitle = strings.TrimSpace(*req.MetaTitle)
	}
	if req.MetaDescription != nil {
		item.MetaDescription = strings.TrimSpace(*req.MetaDescription)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

// Delete refuses when products or subcategories still reference the
// category, reporting both counts.
func (s *Service) Delete(ctx context.Context, id string) error {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, categoryID.Int64())
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	products, err := s.productRepo.CountByCategory(ctx, s.db, item.ID)
	if err != nil {
		return err
	}
	children, err := s.repo.CountChildren(ctx, s.db, item.ID)
	if err != nil {
		return err
	}
	if products > 0 || children > 0 {
		return &domain.DeleteBlockedError{Products: products, Subcategories: children}
	}

	if err := s.repo.Delete(ctx, s.db, item.ID); err != nil {
		return err
	}

	if item.Icon != "" {
		if err := s.storage.Delete(ctx, item.Icon); err != nil {
			s.log.Warn("failed to delete category icon",
				zap.Int64("category_id", item.ID),
				zap.String("icon", item.Icon),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *Service) toResponse(c *domain.Category) domain.Response {
	resp := domain.Response{
		ID:              snowflake.ID(c.ID).String(),
		Name:            c.Name,
		Slug:            c.Slug,
		Description:     c.Description,
		Type:            string(c.Type),
		Icon:            c.Icon,
		Color:           c.Color,
		Status:          string(c.Status),
		SortOrder:       c.SortOrder,
		MetaTitle:       c.MetaTitle,
		MetaDescription: c.MetaDescription,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.ParentID != nil {
		id := snowflake.ID(*c.ParentID).String()
		resp.ParentID = &id
	}
	return resp
}
