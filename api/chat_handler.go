package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/services"
)

type chatHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
	chatService *services.ChatService
}

func newChatHandler(projectRepo *database.ProjectRepo, chatService *services.ChatService) chatHandler {
	logger := log.With().Str("handlerName", "chatHandler").Logger()

	return chatHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
		chatService: chatService,
	}
}

// chat streams an LLM answer about one project over server-sent events. The
// context is the project's full markdown plus its first images; an LLM
// failure after the stream has started is reported as a terminal error event.
func (h chatHandler) chat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, apiErr := parseProjectID(r)
		if apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		var body models.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Messages) == 0 {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("chat", err))
			return
		}

		project, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("find", "project", err))
			return
		}
		if !project.IsPublished && !ctxIsAdmin(r.Context()) {
			h.responder.WriteError(w, errs.NewNotFound("project"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			h.responder.WriteError(w, errs.NewInternalError("streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		err = h.chatService.Stream(r.Context(), project, body.Messages, func(chunk []byte) error {
			return writeSSE(w, flusher, "message", map[string]string{"delta": string(chunk)})
		})
		if err != nil {
			// Headers are gone; the error has to travel in-stream.
			h.logger.Error().Err(err).Str("projectID", projectID.String()).Msg("chat stream failed")
			_ = writeSSE(w, flusher, "error", map[string]string{"error": "chat completion failed"})
			return
		}

		_ = writeSSE(w, flusher, "done", map[string]string{})
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n")); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
