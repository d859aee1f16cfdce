package api

import (
	"github.com/tmc/langchaingo/llms"

	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/services"
	"github.com/rpupo63/portfolio-site-backend/storage"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, blobs storage.Store, model llms.Model, c map[string]string) *routeHandlers {
	bucket := config.GetString(c, "STORAGE_BUCKET", "portfolio")

	updater := services.NewProjectUpdater(db.ProjectRepo(), db.ProjectTagRepo(), blobs, bucket)
	chatService := services.NewChatService(model)

	return &routeHandlers{
		projectHandler: newProjectHandler(db.ProjectRepo(), updater),
		chatHandler:    newChatHandler(db.ProjectRepo(), chatService),
	}
}
