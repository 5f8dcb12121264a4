package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bloghq/blog-backend/internal/auth"
	"github.com/bloghq/blog-backend/internal/blog"
	"github.com/bloghq/blog-backend/internal/storage"
)

const defaultPageSize = 10

// MetricsInterface defines the interface for metrics recording
type MetricsInterface interface {
	RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration)
	RecordAuthAttempt(ctx context.Context, operation string, success bool)
}

type Handler struct {
	authSvc *auth.Service
	blogSvc *blog.Service
	store   storage.Store
	logger  *zap.SugaredLogger
	metrics MetricsInterface
}

func NewHandler(
	authSvc *auth.Service,
	blogSvc *blog.Service,
	store storage.Store,
	logger *zap.SugaredLogger,
	metrics MetricsInterface,
) *Handler {
	return &Handler{
		authSvc: authSvc,
		blogSvc: blogSvc,
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Health endpoints
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Storage is not reachable.")
		return
	}
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}

// Auth endpoints
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body.")
		return
	}
	if req.Email == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required.")
		return
	}

	result, err := h.authSvc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.metrics.RecordAuthAttempt(r.Context(), "register", false)
		if errors.Is(err, storage.ErrEmailTaken) {
			h.writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already in use.")
			return
		}
		h.logger.Errorw("Registration failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed.")
		return
	}

	h.metrics.RecordAuthAttempt(r.Context(), "register", true)
	h.writeJSON(w, http.StatusCreated, authResponse(result))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body.")
		return
	}
	if req.Email == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required.")
		return
	}

	result, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordAuthAttempt(r.Context(), "login", false)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Unknown email and wrong password share this message so the
			// response cannot be used to enumerate accounts.
			h.writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials.")
			return
		}
		h.logger.Errorw("Login failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed.")
		return
	}

	h.metrics.RecordAuthAttempt(r.Context(), "login", true)
	h.writeJSON(w, http.StatusOK, authResponse(result))
}

func authResponse(result *auth.Result) AuthResponse {
	return AuthResponse{
		Token:     result.Token,
		ExpiresIn: result.ExpiresIn,
		UserID:    result.User.ID,
		Email:     result.User.Email,
		Name:      result.User.Name,
	}
}

// Post endpoints
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	pageNumber := queryInt(r, "pageNumber", 1)
	pageSize := queryInt(r, "pageSize", defaultPageSize)

	page, err := h.blogSvc.ListPosts(r.Context(), userID, pageNumber, pageSize)
	if err != nil {
		h.logger.Errorw("Listing posts failed", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not list posts.")
		return
	}

	h.writeJSON(w, http.StatusOK, PagedPostsResponse{
		Items:      page.Items,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found.")
		return
	}

	post, err := h.blogSvc.GetPost(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// A post owned by someone else looks exactly like a missing one.
			h.writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found.")
			return
		}
		h.logger.Errorw("Fetching post failed", "error", err, "post_id", id)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not fetch post.")
		return
	}

	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body.")
		return
	}

	post, err := h.blogSvc.CreatePost(r.Context(), userID, blog.CreatePostInput{
		Title:         req.Title,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		PublishedAt:   req.PublishedAt,
		PublishStatus: req.PublishStatus,
		Tags:          req.Tags,
	})
	if err != nil {
		switch {
		case errors.Is(err, blog.ErrTitleRequired):
			h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Title is required.")
		case errors.Is(err, auth.ErrUnauthenticated):
			h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Missing or invalid token.")
		default:
			h.logger.Errorw("Creating post failed", "error", err, "user_id", userID)
			h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not create post.")
		}
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/posts/%d", post.ID))
	h.writeJSON(w, http.StatusCreated, post)
}

// userID resolves the authenticated user id from the verified claims placed
// in the context by the Authenticate middleware. Writes a 401 and returns
// false when no identity can be resolved.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Missing or invalid token.")
		return 0, false
	}
	userID, err := auth.ResolveUserID(claims)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Missing or invalid token.")
		return 0, false
	}
	return userID, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.logger.Debugw("API error", "code", code, "message", message, "status", status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := ErrorResponse{
		Code:    code,
		Message: message,
	}
	json.NewEncoder(w).Encode(err)
}
