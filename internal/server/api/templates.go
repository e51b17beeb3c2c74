package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tracking"
)

// TemplateHandler handles /api/templates requests, including the
// landmarks and path sub-resources used for training custom gestures.
type TemplateHandler struct {
	store *store.Store
}

// NewTemplateHandler creates a TemplateHandler backed by the store.
func NewTemplateHandler(s *store.Store) *TemplateHandler {
	return &TemplateHandler{store: s}
}

// ServeHTTP routes the template collection, items, and the
// /api/templates/{id}/landmarks and /api/templates/{id}/path
// sub-resources.
func (h *TemplateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/templates")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/landmarks"); ok {
		h.landmarks(w, r, id)
		return
	}
	if id, ok := strings.CutSuffix(path, "/path"); ok {
		h.path(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type templateRequest struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Tolerance *float64 `json:"tolerance"`
}

type templateResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Tolerance float64 `json:"tolerance"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toTemplateResponse(t *store.Template) templateResponse {
	return templateResponse{
		ID:        t.ID,
		Name:      t.Name,
		Kind:      string(t.Kind),
		Tolerance: t.Tolerance,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}

func validKind(kind string) bool {
	return kind == string(gesture.KindStatic) || kind == string(gesture.KindDynamic)
}

func (h *TemplateHandler) list(w http.ResponseWriter, _ *http.Request) {
	templates, err := h.store.Templates().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list templates")
		return
	}
	out := make([]templateResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateResponse(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": out})
}

func (h *TemplateHandler) create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !validKind(req.Kind) {
		writeError(w, http.StatusBadRequest, "kind must be static or dynamic")
		return
	}

	t := &store.Template{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Kind:      gesture.Kind(req.Kind),
		Tolerance: 0.3,
	}
	if req.Tolerance != nil {
		t.Tolerance = *req.Tolerance
	}
	if t.Tolerance <= 0 {
		writeError(w, http.StatusBadRequest, "tolerance must be positive")
		return
	}

	if err := h.store.Templates().Create(t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create template")
		return
	}
	writeJSON(w, http.StatusCreated, toTemplateResponse(t))
}

func (h *TemplateHandler) get(w http.ResponseWriter, _ *http.Request, id string) {
	t, err := h.store.Templates().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}
	writeJSON(w, http.StatusOK, toTemplateResponse(t))
}

func (h *TemplateHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	t, err := h.store.Templates().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Name != "" {
		t.Name = req.Name
	}
	if req.Kind != "" {
		if !validKind(req.Kind) {
			writeError(w, http.StatusBadRequest, "kind must be static or dynamic")
			return
		}
		t.Kind = gesture.Kind(req.Kind)
	}
	if req.Tolerance != nil {
		if *req.Tolerance <= 0 {
			writeError(w, http.StatusBadRequest, "tolerance must be positive")
			return
		}
		t.Tolerance = *req.Tolerance
	}

	if err := h.store.Templates().Update(t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update template")
		return
	}
	writeJSON(w, http.StatusOK, toTemplateResponse(t))
}

func (h *TemplateHandler) delete(w http.ResponseWriter, _ *http.Request, id string) {
	if err := h.store.Templates().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// landmarks handles GET and PUT of a static template's captured hand
// pose.
func (h *TemplateHandler) landmarks(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Templates().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}

	switch r.Method {
	case http.MethodGet:
		landmarks, err := h.store.Templates().Landmarks(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load landmarks")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"landmarks": landmarks})
	case http.MethodPut:
		var req struct {
			Landmarks []tracking.Landmark `json:"landmarks"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if len(req.Landmarks) != tracking.NumLandmarks {
			writeError(w, http.StatusBadRequest, "exactly 21 landmarks are required")
			return
		}
		if err := h.store.Templates().ReplaceLandmarks(id, req.Landmarks); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to store landmarks")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// path handles GET and PUT of a dynamic template's recorded motion
// trace.
func (h *TemplateHandler) path(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Templates().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}

	switch r.Method {
	case http.MethodGet:
		path, err := h.store.Templates().Path(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load path")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"path": path})
	case http.MethodPut:
		var req struct {
			Path []gesture.PathPoint `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if len(req.Path) < 2 {
			writeError(w, http.StatusBadRequest, "path needs at least two points")
			return
		}
		if err := h.store.Templates().ReplacePath(id, req.Path); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to store path")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
