package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/services"
)

const maxUploadBytes = 50 << 20 // multipart memory ceiling per request

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
	updater     *services.ProjectUpdater
}

func newProjectHandler(projectRepo *database.ProjectRepo, updater *services.ProjectUpdater) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
		updater:     updater,
	}
}

// getAllProjects lists projects. Public callers see published projects only;
// an authenticated admin sees everything.
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		find := h.projectRepo.FindPublished
		if ctxIsAdmin(r.Context()) {
			find = h.projectRepo.FindAll
		}

		projects, err := find()
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "projects", err))
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"projects": projects,
			"total":    len(projects),
		})
	}
}

// getFeaturedProjects lists published projects flagged as featured.
func (h projectHandler) getFeaturedProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.FindFeatured()
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "featured projects", err))
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"projects": projects,
			"total":    len(projects),
		})
	}
}

// getProjectBySlug serves a public project page render and bumps its view
// counter. Unpublished projects are only visible to admins, without counting
// the view.
func (h projectHandler) getProjectBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing slug"))
			return
		}

		project, err := h.projectRepo.FindBySlug(slug)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "project", err))
			return
		}

		isAdmin := ctxIsAdmin(r.Context())
		if !project.IsPublished && !isAdmin {
			h.responder.WriteError(w, errs.NewNotFound("project"))
			return
		}

		if !isAdmin {
			if err := h.projectRepo.IncrementViewCount(project.ID); err != nil {
				h.logger.Error().Err(err).Str("slug", slug).Msg("failed to increment view count")
			} else {
				project.ViewCount++
			}
		}

		h.responder.WriteJSON(w, project)
	}
}

// createProject creates a new project from a multipart form. Required parts:
// title, description, category, markdown file. Optional: thumbnail, tags
// (JSON-encoded array), image_0..N. New projects are always unpublished.
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart form", err))
			return
		}

		title := r.FormValue("title")
		description := r.FormValue("description")
		category := r.FormValue("category")
		for field, value := range map[string]string{"title": title, "description": description, "category": category} {
			if value == "" {
				h.responder.WriteError(w, errs.NewMissingRequiredFieldError(field))
				return
			}
		}

		tags, err := parseTagsField(r.FormValue("tags"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		markdown, err := readFilePart(r, "markdown")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if markdown == nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("markdown"))
			return
		}
		thumbnail, err := readFilePart(r, "thumbnail")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		images, err := readImageParts(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.updater.Create(r.Context(), services.CreateRequest{
			Title:       title,
			Description: description,
			Category:    category,
			Tags:        tags,
			Thumbnail:   thumbnail,
			Markdown:    *markdown,
			Images:      images,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, project)
	}
}

// updateProject applies a partial update. The body is either a JSON object
// (text-only edits) or a multipart form carrying text fields plus optional
// thumbnail, markdown and image_0..N file parts.
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, apiErr := parseProjectID(r)
		if apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		var req services.UpdateRequest
		var err error
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			req, err = parseMultipartUpdate(r)
		} else {
			req, err = parseJSONUpdate(r)
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.updater.Update(r.Context(), projectID, req)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// deleteProject removes the database record only; blobs under the project's
// folder are not cleaned up.
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, apiErr := parseProjectID(r)
		if apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		if err := h.updater.DeleteRecord(projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "project deleted successfully",
		})
	}
}

// publishProject toggles publication. publishedAt is set on first publish
// only and cleared on unpublish.
func (h projectHandler) publishProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, apiErr := parseProjectID(r)
		if apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		var body struct {
			IsPublished *bool `json:"isPublished"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsPublished == nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("publish", err))
			return
		}

		project, err := h.updater.SetPublished(projectID, *body.IsPublished)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// featureProject toggles the featured flag, independent of publication.
func (h projectHandler) featureProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, apiErr := parseProjectID(r)
		if apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		var body struct {
			IsFeatured *bool `json:"isFeatured"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsFeatured == nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("feature", err))
			return
		}

		project, err := h.updater.SetFeatured(projectID, *body.IsFeatured)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

func parseProjectID(r *http.Request) (uuid.UUID, *errs.ApiErr) {
	projectIDStr := chi.URLParam(r, "projectID")
	if projectIDStr == "" {
		return uuid.Nil, errs.NewBadRequestError("missing projectID")
	}
	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid projectID")
	}
	return projectID, nil
}

func parseJSONUpdate(r *http.Request) (services.UpdateRequest, error) {
	var body struct {
		Title           *string   `json:"title"`
		Description     *string   `json:"description"`
		Category        *string   `json:"category"`
		Tags            *[]string `json:"tags"`
		IsPublished     *bool     `json:"isPublished"`
		IsFeatured      *bool     `json:"isFeatured"`
		MarkdownContent *string   `json:"markdown_content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return services.UpdateRequest{}, errs.NewMalformedPayloadError("project update", err)
	}

	return services.UpdateRequest{
		Title:           body.Title,
		Description:     body.Description,
		Category:        body.Category,
		Tags:            body.Tags,
		IsPublished:     body.IsPublished,
		IsFeatured:      body.IsFeatured,
		MarkdownContent: body.MarkdownContent,
	}, nil
}

func parseMultipartUpdate(r *http.Request) (services.UpdateRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return services.UpdateRequest{}, errs.NewMalformedPayloadError("multipart form", err)
	}

	var req services.UpdateRequest
	req.Title = formValuePtr(r, "title")
	req.Description = formValuePtr(r, "description")
	req.Category = formValuePtr(r, "category")
	req.MarkdownContent = formValuePtr(r, "markdown_content")

	if raw := formValuePtr(r, "tags"); raw != nil {
		tags, err := parseTagsField(*raw)
		if err != nil {
			return services.UpdateRequest{}, err
		}
		req.Tags = &tags
	}
	if raw := formValuePtr(r, "isPublished"); raw != nil {
		isPublished, err := strconv.ParseBool(*raw)
		if err != nil {
			return services.UpdateRequest{}, errs.NewMalformedPayloadError("isPublished", err)
		}
		req.IsPublished = &isPublished
	}

	var err error
	if req.Thumbnail, err = readFilePart(r, "thumbnail"); err != nil {
		return services.UpdateRequest{}, err
	}
	if req.Markdown, err = readFilePart(r, "markdown"); err != nil {
		return services.UpdateRequest{}, err
	}
	if req.Images, err = readImageParts(r); err != nil {
		return services.UpdateRequest{}, err
	}

	return req, nil
}

// formValuePtr distinguishes "field absent" from "field set to empty".
func formValuePtr(r *http.Request, name string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func parseTagsField(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, errs.NewInvalidTagsError("tags must be a JSON-encoded array of strings")
	}
	return tags, nil
}

func readFilePart(r *http.Request, name string) (*services.FileUpload, error) {
	file, header, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewMalformedPayloadError(name+" file part", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errs.NewMalformedPayloadError(name+" file part", err)
	}

	return &services.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// readImageParts collects image_0..N in order, stopping at the first missing
// index.
func readImageParts(r *http.Request) ([]services.FileUpload, error) {
	var images []services.FileUpload
	for i := 0; ; i++ {
		image, err := readFilePart(r, "image_"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		if image == nil {
			return images, nil
		}
		images = append(images, *image)
	}
}
