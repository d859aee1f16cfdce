package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
)

// fakeModel records the request and streams canned chunks back through the
// caller's streaming func.
type fakeModel struct {
	messages []llms.MessageContent
	chunks   []string
	err      error
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	if m.err != nil {
		return nil, m.err
	}

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	var full strings.Builder
	for _, chunk := range m.chunks {
		full.WriteString(chunk)
		if opts.StreamingFunc != nil {
			if err := opts.StreamingFunc(ctx, []byte(chunk)); err != nil {
				return nil, err
			}
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: full.String()}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func chatProject(imageCount int) *models.Project {
	project := &models.Project{
		Title:           "Wind Tunnel Study",
		MarkdownContent: "# Wind Tunnel Study\n\nAll the details.",
	}
	for i := 0; i < imageCount; i++ {
		project.ImageURLs = append(project.ImageURLs, fmt.Sprintf("https://cdn.example.com/portfolio/projects/wind-tunnel-study/images/%d.png", i))
	}
	return project
}

func TestChatStream_RelaysChunksInOrder(t *testing.T) {
	model := &fakeModel{chunks: []string{"Hel", "lo ", "there"}}
	service := NewChatService(model, WithImageFetcher(func(ctx context.Context, url string) ([]byte, string, error) {
		return []byte("img"), "image/png", nil
	}))

	var received []string
	err := service.Stream(context.Background(), chatProject(0),
		[]models.ChatMessage{{Role: "user", Content: "hi"}},
		func(chunk []byte) error {
			received = append(received, string(chunk))
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo ", "there"}, received)
}

func TestChatStream_ContextContainsFullMarkdown(t *testing.T) {
	model := &fakeModel{chunks: []string{"ok"}}
	service := NewChatService(model, WithImageFetcher(func(ctx context.Context, url string) ([]byte, string, error) {
		return []byte("img"), "image/png", nil
	}))

	err := service.Stream(context.Background(), chatProject(0),
		[]models.ChatMessage{{Role: "user", Content: "what is this about?"}},
		func([]byte) error { return nil })
	require.NoError(t, err)

	require.NotEmpty(t, model.messages)
	system := model.messages[0]
	assert.Equal(t, llms.ChatMessageTypeSystem, system.Role)
	text, ok := system.Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "# Wind Tunnel Study\n\nAll the details.")
}

func TestChatStream_CapsImagesAtFive(t *testing.T) {
	model := &fakeModel{chunks: []string{"ok"}}
	var fetched []string
	service := NewChatService(model, WithImageFetcher(func(ctx context.Context, url string) ([]byte, string, error) {
		fetched = append(fetched, url)
		return []byte("img"), "image/png", nil
	}))

	err := service.Stream(context.Background(), chatProject(9), nil, func([]byte) error { return nil })
	require.NoError(t, err)
	assert.Len(t, fetched, 5)

	binaryParts := 0
	for _, message := range model.messages {
		for _, part := range message.Parts {
			if _, ok := part.(llms.BinaryContent); ok {
				binaryParts++
			}
		}
	}
	assert.Equal(t, 5, binaryParts)
}

func TestChatStream_SkipsUnfetchableImages(t *testing.T) {
	model := &fakeModel{chunks: []string{"ok"}}
	service := NewChatService(model, WithImageFetcher(func(ctx context.Context, url string) ([]byte, string, error) {
		if strings.Contains(url, "/1.png") {
			return nil, "", errors.New("boom")
		}
		return []byte("img"), "image/png", nil
	}))

	err := service.Stream(context.Background(), chatProject(3), nil, func([]byte) error { return nil })
	require.NoError(t, err)

	binaryParts := 0
	for _, message := range model.messages {
		for _, part := range message.Parts {
			if _, ok := part.(llms.BinaryContent); ok {
				binaryParts++
			}
		}
	}
	assert.Equal(t, 2, binaryParts)
}

func TestChatStream_LLMFailureSurfacesAsSingleError(t *testing.T) {
	model := &fakeModel{err: errors.New("model melted")}
	service := NewChatService(model, WithImageFetcher(func(ctx context.Context, url string) ([]byte, string, error) {
		return []byte("img"), "image/png", nil
	}))

	err := service.Stream(context.Background(), chatProject(0),
		[]models.ChatMessage{{Role: "user", Content: "hi"}},
		func([]byte) error { return nil })
	assert.True(t, errs.IsLLMUnavailable(err))
}
