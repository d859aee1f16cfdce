package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Project categories. Category is a closed set; anything else is rejected
// before any storage or database mutation happens.
const (
	CategoryArticle                = "article"
	CategoryAnalysis               = "analysis"
	CategoryTutorial               = "tutorial"
	CategorySoftwareImplementation = "software_implementation"
	CategoryOther                  = "other"
)

// ValidCategories lists every accepted project category.
var ValidCategories = []string{
	CategoryArticle,
	CategoryAnalysis,
	CategoryTutorial,
	CategorySoftwareImplementation,
	CategoryOther,
}

// IsValidCategory checks whether a category belongs to the closed set.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Project represents a portfolio project. The slug doubles as the storage
// folder name: every blob belonging to the project lives under
// projects/{slug}/... in the bucket.
type Project struct {
	ID              uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Slug            string                      `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_project_slug"`
	Title           string                      `json:"title" db:"title" gorm:"type:text;not null"`
	Description     string                      `json:"description" db:"description" gorm:"type:text;not null"`
	Category        string                      `json:"category" db:"category" gorm:"type:text;not null;default:other"`
	Thumbnail       *string                     `json:"thumbnail,omitempty" db:"thumbnail" gorm:"type:text"`
	MarkdownFileURL string                      `json:"markdown_file_url" db:"markdown_file_url" gorm:"type:text"`
	MarkdownContent string                      `json:"markdown_content" db:"markdown_content" gorm:"type:text"`
	ImageURLs       datatypes.JSONSlice[string] `json:"image_urls" db:"image_urls" gorm:"type:jsonb"`
	IsPublished     bool                        `json:"is_published" db:"is_published" gorm:"not null;default:false"`
	PublishedAt     *time.Time                  `json:"published_at,omitempty" db:"published_at"`
	IsFeatured      bool                        `json:"is_featured" db:"is_featured" gorm:"not null;default:false"`
	ViewCount       int                         `json:"view_count" db:"view_count" gorm:"not null;default:0"`
	CreatedAt       time.Time                   `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time                   `json:"updated_at" db:"updated_at"`
	Tags            []ProjectTag                `json:"tags,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

// TagValues flattens the tag rows into plain strings.
func (p *Project) TagValues() []string {
	values := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		values = append(values, tag.Value)
	}
	return values
}
