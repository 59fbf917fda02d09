package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"manim-server/internal/animation"
	"manim-server/internal/logger"
	"manim-server/internal/metrics"
	"manim-server/internal/pipeline"
	"manim-server/internal/store"
)

const maxRequestBody = 1 << 20

// Generator runs one prompt through the rendering pipeline.
type Generator interface {
	Generate(ctx context.Context, prompt, userID string) (pipeline.Result, error)
}

// History reads recorded renders.
type History interface {
	GetRender(ctx context.Context, id string) (store.Render, error)
	GetRandomRender(ctx context.Context) (store.Render, error)
	RenderExists(ctx context.Context, id string) (bool, error)
}

type ServerOptions struct {
	Generator Generator
	// History is optional; without it the history routes answer 503.
	History   History
	Metrics   *metrics.Metrics
	ScenesDir string
	// JWTSecret enables authentication on generation when non-empty.
	JWTSecret      string
	AllowedOrigins string
	Logger         logger.Logger
}

type Server struct {
	generator      Generator
	history        History
	metrics        *metrics.Metrics
	scenesDir      string
	jwtSecret      []byte
	allowedOrigins string
	log            logger.Logger
}

func NewServer(opts ServerOptions) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		generator:      opts.Generator,
		history:        opts.History,
		metrics:        opts.Metrics,
		scenesDir:      opts.ScenesDir,
		jwtSecret:      []byte(opts.JWTSecret),
		allowedOrigins: opts.AllowedOrigins,
		log:            log.With("component", "http"),
	}
}

// SetupRouter configures and returns the application router
func (s *Server) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	r.Use(RecoverMiddleware(s.log))
	r.Use(RequestIDMiddleware)
	r.Use(CorsMiddleware(s.allowedOrigins))
	r.Use(LoggingMiddleware(s.log))

	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/api/animations/{id}", s.getRenderHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/feed", s.getFeedHandler).Methods(http.MethodGet, http.MethodOptions)
	r.PathPrefix(pipeline.MediaPrefix).
		Handler(http.StripPrefix(pipeline.MediaPrefix, noDirListing(http.FileServer(http.Dir(s.scenesDir))))).
		Methods(http.MethodGet, http.MethodHead)

	generate := r.PathPrefix("/api").Subrouter()
	if len(s.jwtSecret) > 0 {
		generate.Use(AuthMiddleware(s.jwtSecret))
	}
	generate.HandleFunc("/generate-animation", s.generateHandler).Methods(http.MethodPost, http.MethodOptions)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/generate-animation"

	prompt, err := readPrompt(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		LogResponse(s.log, r, endpoint, "Invalid request body", err)
		EncodeJSON(w, GenerateResponse{Success: false, Message: "An error occurred: " + err.Error()}, http.StatusInternalServerError)
		return
	}

	userID, _ := GetUserIDFromContext(r.Context())
	LogRequest(s.log, r, endpoint, "Prompt: "+prompt)

	res, err := s.generator.Generate(r.Context(), prompt, userID)
	if err != nil {
		LogResponse(s.log, r, endpoint, "Error generating animation", err)
		EncodeJSON(w, GenerateResponse{Success: false, ID: res.ID, Message: res.Message}, http.StatusInternalServerError)
		return
	}

	LogResponse(s.log, r, endpoint, "Animation generated: "+res.VideoURL, nil)
	EncodeJSON(w, GenerateResponse{
		Success:  true,
		ID:       res.ID,
		VideoURL: res.VideoURL,
		Message:  res.Message,
	}, http.StatusOK)
}

// readPrompt returns the prompt from a request body. An absent or empty body
// (null, {}, 0, "") selects MissingBodyPrompt. An empty prompt field is left
// empty for the pipeline's default; other non-string values are used as
// their JSON text.
func readPrompt(body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return pipeline.MissingBodyPrompt, nil
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("invalid JSON body: %w", err)
	}
	if !animation.Truthy(payload) {
		return pipeline.MissingBodyPrompt, nil
	}
	fields, ok := payload.(map[string]any)
	if !ok {
		return "", fmt.Errorf("request body must be a JSON object, got %T", payload)
	}

	prompt := fields["prompt"]
	if !animation.Truthy(prompt) {
		return "", nil
	}
	if s, ok := prompt.(string); ok {
		return s, nil
	}
	text, err := json.Marshal(prompt)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

func (s *Server) getRenderHandler(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/animations/{id}"
	if s.history == nil {
		EncodeError(w, "Render history not configured", http.StatusServiceUnavailable)
		return
	}

	id := mux.Vars(r)["id"]
	LogRequest(s.log, r, endpoint, "Retrieving render ID: "+id)

	exists, err := s.history.RenderExists(r.Context(), id)
	if err != nil {
		LogResponse(s.log, r, endpoint, "Error checking render ID: "+id, err)
		EncodeError(w, "Error retrieving render: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !exists {
		LogResponse(s.log, r, endpoint, "Render not found with ID: "+id, nil)
		EncodeError(w, "Render not found", http.StatusNotFound)
		return
	}

	rec, err := s.history.GetRender(r.Context(), id)
	if err != nil {
		LogResponse(s.log, r, endpoint, "Error retrieving render ID: "+id, err)
		EncodeError(w, "Error retrieving render: "+err.Error(), http.StatusInternalServerError)
		return
	}

	LogResponse(s.log, r, endpoint, "Render retrieved successfully", nil)
	EncodeJSON(w, rec, http.StatusOK)
}

func (s *Server) getFeedHandler(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/feed"
	if s.history == nil {
		EncodeError(w, "Render history not configured", http.StatusServiceUnavailable)
		return
	}

	LogRequest(s.log, r, endpoint, "Retrieving random render")

	rec, err := s.history.GetRandomRender(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		LogResponse(s.log, r, endpoint, "No renders recorded yet", nil)
		EncodeError(w, "No renders found", http.StatusNotFound)
		return
	}
	if err != nil {
		LogResponse(s.log, r, endpoint, "Error retrieving random render", err)
		EncodeError(w, "Error retrieving random render: "+err.Error(), http.StatusInternalServerError)
		return
	}

	LogResponse(s.log, r, endpoint, "Random render retrieved successfully: "+rec.ID, nil)
	EncodeJSON(w, rec, http.StatusOK)
}

// noDirListing answers 404 for directory paths.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
