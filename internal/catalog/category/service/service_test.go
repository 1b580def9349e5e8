package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bondexsafety/backoffice/internal/catalog/category/domain"
	"github.com/bondexsafety/backoffice/internal/catalog/category/repository"
	productdomain "github.com/bondexsafety/backoffice/internal/catalog/product/domain"
	productrepository "github.com/bondexsafety/backoffice/internal/catalog/product/repository"
	"github.com/bondexsafety/backoffice/internal/clock"
	"github.com/bondexsafety/backoffice/internal/media"
	"github.com/bondexsafety/backoffice/pkg/db"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.Category{}, &productdomain.Product{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	storage, err := media.NewDisk(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	svc := New(Params{
		DB:          dbConn,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
		Repo:        repository.Provide(),
		ProductRepo: productrepository.Provide(),
		Storage:     storage,
	})
	return svc, dbConn, node
}

func TestCreateCategory(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Head Protection",
		Type: "protection_type",
	})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	if resp.Slug != "head-protection" {
		t.Fatalf("expected slug head-protection, got %s", resp.Slug)
	}
	if resp.Status != string(domain.StatusActive) {
		t.Fatalf("expected active, got %s", resp.Status)
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Head Protection",
		Type: "protection_type",
	}); err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	if _, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Head Protection",
		Type: "protection_type",
	}); err != domain.ErrNameTaken {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestCreateCategoryInvalidType(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Head Protection",
		Type: "department",
	}); err != domain.ErrInvalidType {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestCreateCategoryNestingLimit(t *testing.T) {
	svc, _, _ := newTestService(t)

	root, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Head Protection",
		Type: "protection_type",
	})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	child, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:     "Hard Hats",
		Type:     "protection_type",
		ParentID: &root.ID,
	})
	if err != nil {
		t.Fatalf("failed to create subcategory: %v", err)
	}

	// A child cannot itself become a parent.
	if _, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:     "Vented Hard Hats",
		Type:     "protection_type",
		ParentID: &child.ID,
	}); err != domain.ErrNestedParent {
		t.Fatalf("expected ErrNestedParent, got %v", err)
	}
}

func TestDeleteBlockedByReferences(t *testing.T) {
	svc, dbConn, node := newTestService(t)

	root, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Head Protection",
		Type: "protection_type",
	})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	if _, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:     "Hard Hats",
		Type:     "protection_type",
		ParentID: &root.ID,
	}); err != nil {
		t.Fatalf("failed to create subcategory: %v", err)
	}

	rootID, err := snowflake.ParseString(root.ID)
	if err != nil {
		t.Fatalf("failed to parse id: %v", err)
	}
	categoryID := rootID.Int64()
	product := &productdomain.Product{
		ID:         node.Generate().Int64(),
		Name:       "Safety Helmet",
		Slug:       "safety-helmet",
		CategoryID: &categoryID,
		Price:      1500,
		Stock:      10,
		Status:     productdomain.StatusActive,
	}
	if err := dbConn.Create(product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	err = svc.Delete(context.Background(), root.ID)
	var blocked *domain.DeleteBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected DeleteBlockedError, got %v", err)
	}
	if blocked.Products != 1 || blocked.Subcategories != 1 {
		t.Fatalf("unexpected counts: %+v", blocked)
	}
}

func TestDeleteUnreferencedCategory(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Head Protection",
		Type: "protection_type",
	})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	if err := svc.Delete(context.Background(), resp.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), resp.ID); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUpdateCategoryRename(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Head Protection",
		Type: "protection_type",
	})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	name := "Eye Protection"
	updated, err := svc.Update(context.Background(), domain.UpdateRequest{
		ID:   resp.ID,
		Name: &name,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Eye Protection" || updated.Slug != "eye-protection" {
		t.Fatalf("unexpected rename result: %s / %s", updated.Name, updated.Slug)
	}
}

func TestListRootOnly(t *testing.T) {
	svc, _, _ := newTestService(t)

	root, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Head Protection",
		Type: "protection_type",
	})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	if _, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:     "Hard Hats",
		Type:     "protection_type",
		ParentID: &root.ID,
	}); err != nil {
		t.Fatalf("failed to create subcategory: %v", err)
	}

	roots, err := svc.List(context.Background(), domain.ListRequest{RootOnly: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(roots) != 1 || roots[0].Name != "Head Protection" {
		t.Fatalf("expected only the root category, got %d items", len(roots))
	}

	children, err := svc.List(context.Background(), domain.ListRequest{ParentID: root.ID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(children) != 1 || children[0].Name != "Hard Hats" {
		t.Fatalf("expected one subcategory, got %d items", len(children))
	}
}
