// Package api exposes HTTP handlers for the activities service.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"example.com/mergington/internal/domain"
)

// IndexPath is where GET / redirects to.
const IndexPath = "/static/index.html"

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	static  fs.FS
	logger  *zap.Logger
}

// NewHandler builds a Handler. static is the asset tree served under /static/.
func NewHandler(service *domain.Service, static fs.FS, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, static: static, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /activities", h.listActivities)
	mux.HandleFunc("POST /activities/{name}/signup", h.signup)
	mux.HandleFunc("POST /activities/{name}/unregister", h.unregister)
	mux.HandleFunc("GET /{$}", root)
	mux.HandleFunc("GET /healthz", healthz)
	if h.static != nil {
		mux.HandleFunc("GET "+IndexPath, h.index)
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(h.static)))
	}
}

// index serves the front-end entry point directly; http.FileServer would answer
// /index.html with a redirect to the directory.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	body, err := fs.ReadFile(h.static, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "index.html", time.Time{}, bytes.NewReader(body))
}

// root sends browsers to the front-end.
func root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.ListActivities(r.Context())
	if err != nil {
		h.serverError(w, "list activities", err)
		return
	}

	resp := make(ListActivitiesResponse, len(activities))
	for _, a := range activities {
		resp[a.Name] = toActivityView(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	name, email, ok := transitionParams(w, r)
	if !ok {
		return
	}

	if _, err := h.service.Signup(r.Context(), name, email); err != nil {
		h.transitionError(w, name, email, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Signed up %s for %s", email, name)})
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	name, email, ok := transitionParams(w, r)
	if !ok {
		return
	}

	if _, err := h.service.Unregister(r.Context(), name, email); err != nil {
		h.transitionError(w, name, email, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Unregistered %s from %s", email, name)})
}

func transitionParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	name := r.PathValue("name")
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "email query parameter is required")
		return "", "", false
	}
	return name, email, true
}

func (h *Handler) transitionError(w http.ResponseWriter, name, email string, err error) {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Activity not found")
	case errors.Is(err, domain.ErrAlreadySignedUp):
		writeError(w, http.StatusBadRequest, "already_signed_up", fmt.Sprintf("%s is already signed up", email))
	case errors.Is(err, domain.ErrNotSignedUp):
		writeError(w, http.StatusBadRequest, "not_signed_up", fmt.Sprintf("%s is not signed up for %s", email, name))
	case errors.Is(err, domain.ErrActivityFull):
		writeError(w, http.StatusBadRequest, "activity_full", fmt.Sprintf("%s is full", name))
	default:
		h.serverError(w, "roster transition", err, zap.String("activity", name))
	}
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error, fields ...zap.Field) {
	h.logger.Error(op+" failed", append(fields, zap.Error(err))...)
	writeError(w, http.StatusInternalServerError, "server_error", "internal server error")
}

// ActivityView is the JSON shape of one activity in the listing.
type ActivityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// ListActivitiesResponse maps activity names to their current state.
type ListActivitiesResponse map[string]ActivityView

// MessageResponse confirms a successful transition.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse describes a failed request.
type ErrorResponse struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Type: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toActivityView(a domain.Activity) ActivityView {
	participants := a.Participants
	if participants == nil {
		participants = []string{}
	}
	return ActivityView{
		Description:     a.Description,
		Schedule:        a.Schedule,
		MaxParticipants: a.MaxParticipants,
		Participants:    participants,
	}
}
