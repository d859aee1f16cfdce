package database

import (
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-site-backend/models"
)

type Database struct {
	projectRepo    *ProjectRepo
	projectTagRepo *ProjectTagRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		projectRepo:    NewProjectRepo(db),
		projectTagRepo: NewProjectTagRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) ProjectTagRepo() *ProjectTagRepo {
	return d.projectTagRepo
}

// AutoMigrate creates or updates the schema for every entity.
func (d Database) AutoMigrate() error {
	return d.projectRepo.db.AutoMigrate(&models.Project{}, &models.ProjectTag{})
}
