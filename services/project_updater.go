package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/storage"
)

// ProjectStore is the slice of the project repository the updater needs.
// Implementations return errs.ErrNotFound / errs.ErrSlugTaken sentinels
// instead of driver errors.
type ProjectStore interface {
	FindByID(id uuid.UUID) (*models.Project, error)
	FindBySlug(slug string) (*models.Project, error)
	Add(project *models.Project) error
	Update(project *models.Project) error
	Delete(id uuid.UUID) error
}

// TagStore replaces a project's tag rows wholesale.
type TagStore interface {
	ReplaceForProject(projectID uuid.UUID, values []string) error
}

// FileUpload is a file received with a create or update request.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// UpdateRequest is a partial update of a project. Nil pointer fields are
// left untouched.
type UpdateRequest struct {
	Title           *string
	Description     *string
	Category        *string
	Tags            *[]string
	IsPublished     *bool
	IsFeatured      *bool
	MarkdownContent *string
	Thumbnail       *FileUpload
	Markdown        *FileUpload
	Images          []FileUpload
}

// CreateRequest carries everything needed for a new project. Markdown is
// required; new projects are always created unpublished.
type CreateRequest struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	Thumbnail   *FileUpload
	Markdown    FileUpload
	Images      []FileUpload
}

// ProjectUpdater keeps a project's database record, its markdown content and
// its blobs consistent through creates, edits and title-driven slug changes.
// All collaborators are injected so tests can substitute fakes.
type ProjectUpdater struct {
	projects ProjectStore
	tags     TagStore
	blobs    storage.Store
	bucket   string
	logger   zerolog.Logger
	now      func() time.Time
}

func NewProjectUpdater(projects ProjectStore, tags TagStore, blobs storage.Store, bucket string, opts ...func(*ProjectUpdater)) *ProjectUpdater {
	u := &ProjectUpdater{
		projects: projects,
		tags:     tags,
		blobs:    blobs,
		bucket:   bucket,
		logger:   log.With().Str("service", "projectUpdater").Logger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// WithClock overrides the updater's time source.
func WithClock(now func() time.Time) func(*ProjectUpdater) {
	return func(u *ProjectUpdater) {
		u.now = now
	}
}

func projectFolder(slug string) string {
	return "projects/" + slug
}

func markdownPath(slug string) string {
	return projectFolder(slug) + "/content.md"
}

func thumbnailPath(slug, filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".png"
	}
	return projectFolder(slug) + "/thumbnail" + ext
}

func imagePath(slug string, timestamp int64, index int, filename string) string {
	return fmt.Sprintf("%s/images/%d-%d-%s", projectFolder(slug), timestamp, index, filepath.Base(filename))
}

// Create uploads a new project's assets under its derived slug, rewrites
// relative image references in the markdown to their public URLs, and inserts
// the record. New projects start unpublished.
func (u *ProjectUpdater) Create(ctx context.Context, req CreateRequest) (*models.Project, error) {
	slug := Slugify(req.Title)
	if slug == "" {
		return nil, errs.NewInvalidTitleError(req.Title)
	}

	category := req.Category
	if category == "" {
		category = models.CategoryOther
	}
	if !models.IsValidCategory(category) {
		return nil, errs.NewInvalidCategoryError(category, models.ValidCategories)
	}
	tags, err := NormalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	if existing, err := u.projects.FindBySlug(slug); err != nil && !errs.IsNotFound(err) {
		return nil, errs.NewDatabaseError("find by slug", "project", err)
	} else if existing != nil {
		return nil, errs.NewSlugConflict(slug)
	}

	imageURLs, err := u.uploadImages(ctx, slug, req.Images)
	if err != nil {
		return nil, err
	}

	// Relative references like ![Chart](chart.png) point at files uploaded
	// with this request; rewrite them to the stored public URLs.
	mapping := make(map[string]string)
	for _, ref := range ExtractImageReferences(string(req.Markdown.Data)) {
		for i, image := range req.Images {
			if filepath.Base(ref) == filepath.Base(image.Name) {
				mapping[ref] = imageURLs[i]
				break
			}
		}
	}
	content := RewritePaths(string(req.Markdown.Data), mapping)

	mdPath, err := u.blobs.Upload(ctx, u.bucket, markdownPath(slug), []byte(content), "text/markdown", true)
	if err != nil {
		return nil, err
	}

	var thumbnailURL *string
	if req.Thumbnail != nil {
		path, err := u.blobs.Upload(ctx, u.bucket, thumbnailPath(slug, req.Thumbnail.Name), req.Thumbnail.Data, req.Thumbnail.ContentType, true)
		if err != nil {
			return nil, err
		}
		url := u.blobs.PublicURL(u.bucket, path)
		thumbnailURL = &url
	}

	now := u.now()
	project := &models.Project{
		ID:              uuid.New(),
		Slug:            slug,
		Title:           req.Title,
		Description:     req.Description,
		Category:        category,
		Thumbnail:       thumbnailURL,
		MarkdownFileURL: u.blobs.PublicURL(u.bucket, mdPath),
		MarkdownContent: content,
		ImageURLs:       imageURLs,
		IsPublished:     false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := u.projects.Add(project); err != nil {
		if errs.IsSlugTaken(err) {
			return nil, errs.NewSlugConflict(slug)
		}
		return nil, errs.NewDatabaseError("create", "project", err)
	}
	if len(tags) > 0 {
		if err := u.tags.ReplaceForProject(project.ID, tags); err != nil {
			return nil, errs.NewDatabaseError("create tags for", "project", err)
		}
	}

	return u.reload(project.ID)
}

// Update applies a partial update to an existing project. When the title
// changes without any file uploads, the project's existing blobs are migrated
// from the old slug folder to the new one before the record is written; a
// copy failure aborts before the database write, leaving at most duplicated
// blobs, never a record pointing at missing ones.
func (u *ProjectUpdater) Update(ctx context.Context, projectID uuid.UUID, req UpdateRequest) (*models.Project, error) {
	current, err := u.projects.FindByID(projectID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.NewNotFound("project")
		}
		return nil, errs.NewDatabaseError("find", "project", err)
	}

	// Validation happens before any storage mutation.
	if req.Category != nil && !models.IsValidCategory(*req.Category) {
		return nil, errs.NewInvalidCategoryError(*req.Category, models.ValidCategories)
	}
	var normalizedTags []string
	if req.Tags != nil {
		normalizedTags, err = NormalizeTags(*req.Tags)
		if err != nil {
			return nil, err
		}
	}

	titleChanged := req.Title != nil && *req.Title != current.Title
	targetSlug := current.Slug
	slugChanged := false
	if titleChanged {
		newSlug := Slugify(*req.Title)
		if newSlug == "" {
			return nil, errs.NewInvalidTitleError(*req.Title)
		}
		if newSlug != current.Slug {
			if other, err := u.projects.FindBySlug(newSlug); err != nil && !errs.IsNotFound(err) {
				return nil, errs.NewDatabaseError("find by slug", "project", err)
			} else if other != nil && other.ID != current.ID {
				return nil, errs.NewSlugConflict(newSlug)
			}
			targetSlug = newSlug
			slugChanged = true
		}
	}

	hasFiles := req.Thumbnail != nil || req.Markdown != nil || len(req.Images) > 0

	if req.Thumbnail != nil {
		path, err := u.blobs.Upload(ctx, u.bucket, thumbnailPath(targetSlug, req.Thumbnail.Name), req.Thumbnail.Data, req.Thumbnail.ContentType, true)
		if err != nil {
			return nil, err
		}
		url := u.blobs.PublicURL(u.bucket, path)
		current.Thumbnail = &url
	}
	if req.Markdown != nil {
		path, err := u.blobs.Upload(ctx, u.bucket, markdownPath(targetSlug), req.Markdown.Data, "text/markdown", true)
		if err != nil {
			return nil, err
		}
		current.MarkdownFileURL = u.blobs.PublicURL(u.bucket, path)
		current.MarkdownContent = string(req.Markdown.Data)
	}
	if len(req.Images) > 0 {
		urls, err := u.uploadImages(ctx, targetSlug, req.Images)
		if err != nil {
			return nil, err
		}
		current.ImageURLs = append(current.ImageURLs, urls...)
	}

	// Migration runs only for a pure rename: title changed, nothing
	// uploaded. Mixed requests land new files under the new slug and leave
	// old, unreplaced blobs behind (known gap).
	if slugChanged && !hasFiles {
		if err := u.migrate(ctx, current, current.Slug, targetSlug); err != nil {
			return nil, err
		}
	}

	// A direct markdown text edit has to reach content.md too, or the
	// record and the stored file drift apart.
	if req.MarkdownContent != nil && req.Markdown == nil {
		path, err := u.blobs.Upload(ctx, u.bucket, markdownPath(targetSlug), []byte(*req.MarkdownContent), "text/markdown", true)
		if err != nil {
			return nil, err
		}
		current.MarkdownFileURL = u.blobs.PublicURL(u.bucket, path)
		current.MarkdownContent = *req.MarkdownContent
	}

	if req.Title != nil {
		current.Title = *req.Title
	}
	current.Slug = targetSlug
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.Category != nil {
		current.Category = *req.Category
	}
	if req.IsFeatured != nil {
		current.IsFeatured = *req.IsFeatured
	}
	u.applyPublication(current, req.IsPublished)
	current.UpdatedAt = u.now()

	if err := u.projects.Update(current); err != nil {
		if errs.IsSlugTaken(err) {
			return nil, errs.NewSlugConflict(targetSlug)
		}
		return nil, errs.NewDatabaseError("update", "project", err)
	}
	if req.Tags != nil {
		if err := u.tags.ReplaceForProject(current.ID, normalizedTags); err != nil {
			return nil, errs.NewDatabaseError("update tags for", "project", err)
		}
	}

	return u.reload(current.ID)
}

// SetPublished flips the publication flag. The publish date is set exactly
// once, on the first transition to published, and cleared on unpublish.
func (u *ProjectUpdater) SetPublished(projectID uuid.UUID, published bool) (*models.Project, error) {
	current, err := u.projects.FindByID(projectID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.NewNotFound("project")
		}
		return nil, errs.NewDatabaseError("find", "project", err)
	}

	u.applyPublication(current, &published)
	current.UpdatedAt = u.now()
	if err := u.projects.Update(current); err != nil {
		return nil, errs.NewDatabaseError("update", "project", err)
	}
	return u.reload(current.ID)
}

// SetFeatured flips the featured flag, independent of publication state.
func (u *ProjectUpdater) SetFeatured(projectID uuid.UUID, featured bool) (*models.Project, error) {
	current, err := u.projects.FindByID(projectID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.NewNotFound("project")
		}
		return nil, errs.NewDatabaseError("find", "project", err)
	}

	current.IsFeatured = featured
	current.UpdatedAt = u.now()
	if err := u.projects.Update(current); err != nil {
		return nil, errs.NewDatabaseError("update", "project", err)
	}
	return u.reload(current.ID)
}

// DeleteRecord removes the database record only. Blobs under the project's
// folder are left orphaned (known gap).
func (u *ProjectUpdater) DeleteRecord(projectID uuid.UUID) error {
	if _, err := u.projects.FindByID(projectID); err != nil {
		if errs.IsNotFound(err) {
			return errs.NewNotFound("project")
		}
		return errs.NewDatabaseError("find", "project", err)
	}
	if err := u.projects.Delete(projectID); err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}
	return nil
}

func (u *ProjectUpdater) applyPublication(project *models.Project, isPublished *bool) {
	if isPublished == nil {
		return
	}
	if *isPublished {
		project.IsPublished = true
		if project.PublishedAt == nil {
			publishedAt := u.now()
			project.PublishedAt = &publishedAt
		}
	} else {
		project.IsPublished = false
		project.PublishedAt = nil
	}
}

// uploadImages stores each image under the slug's images folder with a
// timestamp-index prefix so repeated uploads of the same filename never
// collide. Uploads run concurrently; result order matches input order.
func (u *ProjectUpdater) uploadImages(ctx context.Context, slug string, images []FileUpload) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}

	timestamp := u.now().UnixMilli()
	urls := make([]string, len(images))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, image := range images {
		group.Go(func() error {
			path, err := u.blobs.Upload(groupCtx, u.bucket, imagePath(slug, timestamp, i, image.Name), image.Data, image.ContentType, true)
			if err != nil {
				return err
			}
			urls[i] = u.blobs.PublicURL(u.bucket, path)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// migrate copies every blob under the old slug's folder to the new one, then
// deletes the old folder, and rewrites the record's asset URLs in place. A
// copy failure aborts immediately: old blobs are still intact and the record
// has not been written, so the project keeps working under its old slug.
func (u *ProjectUpdater) migrate(ctx context.Context, project *models.Project, oldSlug, newSlug string) error {
	oldFolder := projectFolder(oldSlug)
	newFolder := projectFolder(newSlug)

	keys, err := u.blobs.List(ctx, u.bucket, oldFolder)
	if err != nil {
		return err
	}

	for _, key := range keys {
		target := newFolder + strings.TrimPrefix(key, oldFolder)
		if err := u.blobs.Copy(ctx, u.bucket, key, target); err != nil {
			u.logger.Error().Err(err).Str("from", key).Str("to", target).
				Msg("migration copy failed; old folder retained")
			return err
		}
	}

	// Copies are all in place; losing the old folder now is safe. If the
	// delete itself fails the old blobs are merely orphaned, which is the
	// recoverable side of the trade-off, so the rename still goes through.
	if err := u.blobs.DeleteFolder(ctx, u.bucket, oldFolder); err != nil {
		u.logger.Warn().Err(err).Str("folder", oldFolder).
			Msg("could not delete old slug folder after migration")
	}

	oldPrefix := u.blobs.PublicURL(u.bucket, oldFolder)
	newPrefix := u.blobs.PublicURL(u.bucket, newFolder)
	swap := func(url string) string {
		if strings.HasPrefix(url, oldPrefix) {
			return newPrefix + strings.TrimPrefix(url, oldPrefix)
		}
		return url
	}

	project.MarkdownFileURL = swap(project.MarkdownFileURL)
	if project.Thumbnail != nil {
		moved := swap(*project.Thumbnail)
		project.Thumbnail = &moved
	}
	for i, url := range project.ImageURLs {
		project.ImageURLs[i] = swap(url)
	}
	return nil
}

func (u *ProjectUpdater) reload(id uuid.UUID) (*models.Project, error) {
	project, err := u.projects.FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("reload", "project", err)
	}
	return project, nil
}

// NormalizeTags trims, lower-cases and de-duplicates tag values, preserving
// first-occurrence order. A tag that normalizes to the empty string rejects
// the whole set.
func NormalizeTags(tags []string) ([]string, error) {
	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		value := strings.ToLower(strings.TrimSpace(tag))
		if value == "" {
			return nil, errs.NewInvalidTagsError("tags must not be empty")
		}
		if seen[value] {
			continue
		}
		seen[value] = true
		normalized = append(normalized, value)
	}
	return normalized, nil
}
