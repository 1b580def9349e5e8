package repository

import (
	"context"
	"strings"

	"github.com/bondexsafety/backoffice/internal/catalog/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).First(&p, "slug = ?", slug).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Product, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{})

	if filter.CategoryID != nil {
		stmt = stmt.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		stmt = stmt.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(slug) LIKE ?", like, like, like)
	}
	if filter.LowStock {
		stmt = stmt.Where("stock <= low_stock_at")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stmt = stmt.Order(orderClause(filter.SortBy, filter.OrderBy))
	stmt = filter.Page.Apply(stmt)

	var items []domain.Product
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Save(product).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id).Error
}

func (r *repo) DecrementStock(ctx context.Context, db *gorm.DB, id, qty int64) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE products
		 SET stock = stock - ?,
		     status = CASE WHEN stock - ? <= 0 AND status = 'active' THEN 'out_of_stock' ELSE status END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND stock >= ?`,
		qty, qty, id, qty,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) IncrementStock(ctx context.Context, db *gorm.DB, id, qty int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET stock = stock + ?,
		     status = CASE WHEN status = 'out_of_stock' THEN 'active' ELSE status END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		qty, id,
	).Error
}

func (r *repo) IncrementViews(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET views = views + 1 WHERE id = ?`, id,
	).Error
}

func (r *repo) IncrementSales(ctx context.Context, db *gorm.DB, id, qty int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET sales = sales + ? WHERE id = ?`, qty, id,
	).Error
}

func (r *repo) CountByCategory(ctx context.Context, db *gorm.DB, categoryID int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func orderClause(sortBy, orderBy string) string {
	allowed := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"price":      true,
		"stock":      true,
		"sales":      true,
		"views":      true,
	}
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(orderBy, "asc") {
		direction = "ASC"
	}
	return sortBy + " " + direction
}
