// Package domain contains persistence models and contracts for
// catalog categories.
package domain

import "time"

// CategoryType classifies categories in the storefront navigation.
type CategoryType string

const (
	TypeProtection    CategoryType = "protection_type"
	TypeIndustry      CategoryType = "industry"
	TypeBrand         CategoryType = "brand"
	TypeCertification CategoryType = "certification"
)

type CategoryStatus string

const (
	StatusActive   CategoryStatus = "active"
	StatusInactive CategoryStatus = "inactive"
)

// Category is a catalog grouping. The tree is one level deep: a category
// either is a root or references a root parent.
type Category struct {
	ID          int64          `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:text;not null;uniqueIndex:ux_categories_name"`
	Slug        string         `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_categories_slug"`
	Description string         `json:"description" gorm:"type:text"`
	Type        CategoryType   `json:"type" gorm:"type:text;not null"`
	ParentID    *int64         `json:"parent_id" gorm:"index"`
	Icon        string         `json:"icon" gorm:"type:text"`
	Color       string         `json:"color" gorm:"type:text"`
	Status      CategoryStatus `json:"status" gorm:"type:text;not null;default:'active'"`
	SortOrder   int            `json:"sort_order" gorm:"not null;default:0"`

	MetaTitle       string `json:"meta_title" gorm:"type:text"`
	MetaDescription string `json:"meta_description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Category) TableName() string { return "categories" }

func (t CategoryType) Valid() bool {
	switch t {
	case TypeProtection, TypeIndustry, TypeBrand, TypeCertification:
		return true
	default:
		return false
	}
}

func (s CategoryStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}
