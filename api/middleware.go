package api

import (
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/descope/go-sdk/descope/client"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/errs"
)

type authMiddleware struct {
	responder Responder
	descope   *client.DescopeClient
	jwtSecret []byte
}

// newAuthMiddleware validates admin sessions against the hosted auth
// provider when DESCOPE_PROJECT_ID is configured, otherwise against a
// locally signed HMAC token (ADMIN_JWT_SECRET).
func newAuthMiddleware(c map[string]string) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	m := authMiddleware{
		responder: NewResponder(logger),
		jwtSecret: []byte(config.GetString(c, "ADMIN_JWT_SECRET", "")),
	}

	if projectID := config.GetString(c, "DESCOPE_PROJECT_ID", ""); projectID != "" {
		descopeClient, err := client.NewWithConfig(&client.Config{ProjectID: projectID})
		if err != nil {
			logger.Error().Err(err).Msg("failed to initialize auth provider client")
		} else {
			m.descope = descopeClient
		}
	}

	return m
}

func (m authMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.responder.WriteError(w, errs.Unauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" || !m.validToken(r, token) {
			m.responder.WriteError(w, errs.Unauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxWithAdmin(r.Context())))
	})
}

// detectAdmin is like authenticate but never rejects: it only flags valid
// admin sessions, so public listings can include unpublished projects for
// the dashboard.
func (m authMiddleware) detectAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader && token != "" && m.validToken(r, token) {
			r = r.WithContext(ctxWithAdmin(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

func (m authMiddleware) validToken(r *http.Request, token string) bool {
	if m.descope != nil {
		ok, _, err := m.descope.Auth.ValidateSessionWithToken(r.Context(), token)
		return err == nil && ok
	}

	if len(m.jwtSecret) == 0 {
		return false
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	return err == nil && parsed.Valid
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				// Write 500 if nothing written yet
				if !srw.wroteHeader {
					srw.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(srw, r)

		if srw.status == http.StatusInternalServerError {
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("500 error response")
		}
	})
}

// ColoredHTTPLoggingMiddleware logs HTTP requests with colored output based on status codes
func ColoredHTTPLoggingMiddleware(next http.Handler) http.Handler {
	colorLogger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		duration := time.Since(start)

		var logEvent *zerolog.Event
		switch {
		case srw.status >= 500:
			logEvent = colorLogger.Error()
		case srw.status >= 400:
			logEvent = colorLogger.Warn()
		default:
			logEvent = colorLogger.Info()
		}

		logEvent.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", srw.status).
			Dur("duration", duration).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP Request")
	})
}
