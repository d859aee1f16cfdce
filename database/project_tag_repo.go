package database

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-site-backend/models"
)

type ProjectTagRepo struct {
	db *gorm.DB
}

func NewProjectTagRepo(db *gorm.DB) *ProjectTagRepo {
	return &ProjectTagRepo{db}
}

// FindByProjectID returns all tags for a project.
func (r *ProjectTagRepo) FindByProjectID(projectID uuid.UUID) ([]*models.ProjectTag, error) {
	var tags []*models.ProjectTag
	err := r.db.Where("project_id = ?", projectID).Find(&tags).Error
	return tags, translate(err)
}

// Add inserts a new project tag into the database
func (r *ProjectTagRepo) Add(tag *models.ProjectTag) error {
	return translate(r.db.Create(tag).Error)
}

// ReplaceForProject swaps a project's tag rows for the given values.
// Values are assumed normalized by the caller.
func (r *ProjectTagRepo) ReplaceForProject(projectID uuid.UUID, values []string) error {
	return translate(r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectTag{}).Error; err != nil {
			return err
		}
		for _, value := range values {
			tag := models.ProjectTag{ID: uuid.New(), ProjectID: projectID, Value: value}
			if err := tx.Create(&tag).Error; err != nil {
				return err
			}
		}
		return nil
	}))
}

// Delete removes a project tag from the database by id
func (r *ProjectTagRepo) Delete(id uuid.UUID) error {
	return translate(r.db.Delete(&models.ProjectTag{}, id).Error)
}
