package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"assignment-service/internal/app"
	"assignment-service/internal/auth"
	"assignment-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5/request"
)

// Options tunes the HTTP server.
type Options struct {
	AllowedOrigins []string
	LogLevel       slog.Level
	// Concise switches request logs to a compact format.
	Concise bool
}

// Server exposes the assignment use cases over REST and websockets.
type Server struct {
	service  *app.Service
	auth     *auth.Authenticator
	validate *validator.Validate
	router   *chi.Mux
	ws       *WSHandler
}

func NewServer(service *app.Service, authenticator *auth.Authenticator, opts Options) *Server {
	router := chi.NewRouter()

	logger := httplog.NewLogger("assignment-service", httplog.Options{
		LogLevel:         opts.LogLevel,
		Concise:          opts.Concise,
		RequestHeaders:   true,
		MessageFieldName: "message",
	})
	router.Use(httplog.RequestLogger(logger))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	server := &Server{
		service:  service,
		auth:     authenticator,
		validate: validate,
		router:   router,
		ws:       NewWSHandler(service, authenticator),
	}
	server.routes()
	return server
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws/attempt", s.ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login/teacher", s.loginTeacher)
		r.Post("/login/student", s.loginStudent)
		r.Get("/stats", s.stats)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/assignments", s.createAssignment)
			r.Get("/assignments", s.listAssignments)
			r.Get("/assignments/{id}", s.assignmentOverview)
			r.Post("/submissions/{id}/grade", s.gradeSubmission)

			r.Get("/student/dashboard", s.studentDashboard)
			r.Get("/student/assignments/{id}", s.studentAssignment)
			r.Post("/student/assignments/{id}/submit", s.submit)
			r.Post("/student/assignments/{id}/start", s.startAttempt)
			r.Put("/student/assignments/{id}/draft", s.saveDraft)
			r.Get("/student/assignments/{id}/draft", s.loadDraft)
		})
	})
}

type ctxKey int

const identityKey ctxKey = iota

// requireAuth verifies the bearer token and stores the caller identity in
// the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := request.BearerExtractor{}.ExtractToken(r)
		if err != nil {
			if errors.Is(err, request.ErrNoTokenInRequest) {
				writeJsonErrorResponse(w, errUnauthenticated("missing bearer token"))
				return
			}
			writeJsonErrorResponse(w, errUnauthenticated(err.Error()))
			return
		}
		id, err := s.auth.Verify(token)
		if err != nil {
			httplog.LogEntry(r.Context()).Debug("rejected token", "error", err)
			writeJsonErrorResponse(w, errUnauthenticated("invalid token"))
			return
		}
		httplog.LogEntrySetField(r.Context(), "role", slog.StringValue(string(id.Role)))
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

func withIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// identityFrom returns the caller identity; the zero identity holds no role.
func identityFrom(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(identityKey).(domain.Identity)
	return id
}
