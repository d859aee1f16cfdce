package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
)

// maxChatImages caps how many project images are attached to a chat request,
// keeping request size and token cost bounded.
const maxChatImages = 5

// ImageFetcher retrieves an image by URL, returning its bytes and MIME type.
type ImageFetcher func(ctx context.Context, url string) ([]byte, string, error)

// ChatService answers questions about a single project by handing the LLM the
// project's full markdown plus its images. No retrieval or chunking: the
// whole document is the context.
type ChatService struct {
	model      llms.Model
	fetchImage ImageFetcher
	logger     zerolog.Logger
}

func NewChatService(model llms.Model, opts ...func(*ChatService)) *ChatService {
	s := &ChatService{
		model:      model,
		fetchImage: fetchImageHTTP,
		logger:     log.With().Str("service", "chatService").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithImageFetcher overrides how image URLs are resolved to bytes.
func WithImageFetcher(fetch ImageFetcher) func(*ChatService) {
	return func(s *ChatService) {
		s.fetchImage = fetch
	}
}

// Stream sends the project context plus the conversation to the LLM and
// relays each response chunk to onDelta as it arrives. An image that cannot
// be fetched is skipped; a failing LLM call is surfaced as a single error.
func (s *ChatService) Stream(ctx context.Context, project *models.Project, history []models.ChatMessage, onDelta func(chunk []byte) error) error {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, fmt.Sprintf(
			"You are an assistant answering questions about the project %q. "+
				"Base your answers on the project document below.\n\n%s",
			project.Title, project.MarkdownContent)),
	}

	if parts := s.imageParts(ctx, project); len(parts) > 0 {
		parts = append([]llms.ContentPart{llms.TextPart("Images from the project document:")}, parts...)
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeHuman,
			Parts: parts,
		})
	}

	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, turn.Content))
	}

	_, err := s.model.GenerateContent(ctx, messages,
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			return onDelta(chunk)
		}),
	)
	if err != nil {
		return errs.NewLLMUnavailableError(err)
	}
	return nil
}

func (s *ChatService) imageParts(ctx context.Context, project *models.Project) []llms.ContentPart {
	urls := project.ImageURLs
	if len(urls) > maxChatImages {
		urls = urls[:maxChatImages]
	}

	var parts []llms.ContentPart
	for _, url := range urls {
		data, mimeType, err := s.fetchImage(ctx, url)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", url).Msg("skipping unfetchable chat image")
			continue
		}
		parts = append(parts, llms.BinaryPart(mimeType, data))
	}
	return parts
}

func fetchImageHTTP(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/png"
	}
	return data, mimeType, nil
}
