package database

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindAll returns all projects, newest first.
func (r *ProjectRepo) FindAll() ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.Preload("Tags").Order("created_at DESC").Find(&projects).Error
	return projects, translate(err)
}

// FindPublished returns only published projects, newest publication first.
func (r *ProjectRepo) FindPublished() ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.Preload("Tags").
		Where("is_published = ?", true).
		Order("published_at DESC").
		Find(&projects).Error
	return projects, translate(err)
}

// FindFeatured returns published projects flagged as featured.
func (r *ProjectRepo) FindFeatured() ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.Preload("Tags").
		Where("is_published = ? AND is_featured = ?", true, true).
		Order("published_at DESC").
		Find(&projects).Error
	return projects, translate(err)
}

// FindByID returns a project by its ID
func (r *ProjectRepo) FindByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("Tags").First(&project, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &project, nil
}

// FindBySlug returns a project by its slug
func (r *ProjectRepo) FindBySlug(slug string) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("Tags").Where("slug = ?", slug).First(&project).Error
	if err != nil {
		return nil, translate(err)
	}
	return &project, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(project *models.Project) error {
	return translate(r.db.Create(project).Error)
}

// Update persists every field of an existing project in a single write.
func (r *ProjectRepo) Update(project *models.Project) error {
	return translate(r.db.Omit("Tags").Save(project).Error)
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(id uuid.UUID) error {
	return translate(r.db.Delete(&models.Project{}, id).Error)
}

// IncrementViewCount bumps the view counter without touching updated_at.
func (r *ProjectRepo) IncrementViewCount(id uuid.UUID) error {
	return translate(r.db.Model(&models.Project{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error)
}

// translate narrows gorm/driver errors to the repo's tagged sentinels, so
// callers never inspect driver error types directly.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrNotFound
	}
	if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "slug") {
		return errs.ErrSlugTaken
	}
	return err
}
