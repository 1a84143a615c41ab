package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/internal/render"
	"github.com/wonny/asx-screener/internal/screener"
	"github.com/wonny/asx-screener/internal/snapshot"
	"github.com/wonny/asx-screener/pkg/logger"
)

// SnapshotSource supplies the snapshot every request screens
type SnapshotSource interface {
	Latest(ctx context.Context) (*contracts.Snapshot, error)
	Summary(ctx context.Context, snap *contracts.Snapshot) contracts.Summary
}

// ScreenHandler serves the stateless endpoints: catalog, summary, presets
// and one-shot screens
// ⭐ SSOT: 단발성 스크리닝 API 핸들러는 이 구조체에서만
type ScreenHandler struct {
	source   SnapshotSource
	presets  []screener.Preset
	pageSize int
	logger   *logger.Logger
}

// NewScreenHandler creates a new screen handler
func NewScreenHandler(source SnapshotSource, presets []screener.Preset, pageSize int, log *logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		source:   source,
		presets:  presets,
		pageSize: pageSize,
		logger:   log,
	}
}

// GetColumns returns the column registry
// GET /api/columns
func (h *ScreenHandler) GetColumns(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"columns":         columns.All(),
		"range_fields":    screener.RangeFields(),
		"category_fields": screener.CategoryFields(),
		"page_sizes":      screener.PageSizes,
	})
}

// GetSummary returns the headline summary of the latest snapshot
// GET /api/snapshot/summary
func (h *ScreenHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.source.Summary(r.Context(), snap))
}

// GetPresets lists the configured presets
// GET /api/presets
func (h *ScreenHandler) GetPresets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"presets": h.presets,
	})
}

// Screen runs a one-shot screen described by query parameters
// GET /api/screen
func (h *ScreenHandler) Screen(w http.ResponseWriter, r *http.Request) {
	view, ok := h.screen(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// ScreenHTML runs a one-shot screen and renders it as an HTML page
// GET /api/screen.html
func (h *ScreenHandler) ScreenHTML(w http.ResponseWriter, r *http.Request) {
	view, ok := h.screen(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Document(w, r.URL.Query().Get("title"), view); err != nil {
		h.logger.WithError(err).Error("Failed to render screen")
	}
}

func (h *ScreenHandler) screen(w http.ResponseWriter, r *http.Request) (screener.View, bool) {
	actions, err := ParseScreenQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return screener.View{}, false
	}

	snap, ok := h.latest(w, r)
	if !ok {
		return screener.View{}, false
	}

	c, err := screener.NewController(snap, screener.Options{PageSize: h.pageSize, Presets: h.presets})
	if err != nil {
		h.logger.WithError(err).Error("Failed to create controller")
		respondError(w, http.StatusInternalServerError, "Invalid snapshot")
		return screener.View{}, false
	}

	view := c.View()
	for _, a := range actions {
		if view, err = c.Apply(a); err != nil {
			respondError(w, actionStatus(err), err.Error())
			return screener.View{}, false
		}
	}

	h.logger.WithFields(map[string]interface{}{
		"actions": len(actions),
		"matched": view.Matched,
	}).Debug("One-shot screen")
	return view, true
}

// latest loads the snapshot, answering 503 when none exists yet
func (h *ScreenHandler) latest(w http.ResponseWriter, r *http.Request) (*contracts.Snapshot, bool) {
	snap, err := h.source.Latest(r.Context())
	if err != nil {
		status, msg := snapshotError(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("Failed to load snapshot")
		}
		respondError(w, status, msg)
		return nil, false
	}
	return snap, true
}

// snapshotError maps a snapshot load error onto status and message
func snapshotError(err error) (int, string) {
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		return http.StatusServiceUnavailable, "No snapshot available yet"
	}
	return http.StatusInternalServerError, "Failed to load snapshot"
}

// actionStatus maps an action error onto an HTTP status
func actionStatus(err error) int {
	if errors.Is(err, screener.ErrUnknownPreset) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
