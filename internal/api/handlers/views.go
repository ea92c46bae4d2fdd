package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/controller"
	"github.com/draeangela/industry-data-visualizer/internal/render"
	"github.com/draeangela/industry-data-visualizer/internal/views"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// ViewHandler serves view sessions: creation, commands, charts and saved views
// ⭐ SSOT: 뷰 세션 API 핸들러는 이 구조체에서만
type ViewHandler struct {
	registry *controller.Registry
	saved    views.Repository
	logger   *logger.Logger
}

// NewViewHandler creates a new view handler
func NewViewHandler(registry *controller.Registry, saved views.Repository, log *logger.Logger) *ViewHandler {
	return &ViewHandler{
		registry: registry,
		saved:    saved,
		logger:   log,
	}
}

// Create opens a session for the series in ?seriesIds=a,b,c
// POST /api/views
func (h *ViewHandler) Create(w http.ResponseWriter, r *http.Request) {
	ids := contracts.ParseSeriesIDList(r.URL.Query().Get("seriesIds"))

	session, err := h.registry.Create(r.Context(), ids)
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	snap, err := session.State(r.Context())
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, snap)
}

// Get returns the committed and draft state
// GET /api/views/{id}
func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	snap, err := session.State(r.Context())
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// Close ends a session
// DELETE /api/views/{id}
func (h *ViewHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Close(mux.Vars(r)["id"]); err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Command applies one editor or toolbar command
// POST /api/views/{id}/commands
func (h *ViewHandler) Command(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req controller.CommandRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid command body: "+err.Error())
		return
	}

	cmd, err := req.Decode()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := session.Dispatch(r.Context(), cmd)
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}

// Chart returns the projected series of the committed state
// GET /api/views/{id}/chart
func (h *ViewHandler) Chart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	chart, err := session.Chart(r.Context())
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, chart)
}

// ChartOption returns the ECharts page, or the bare option with ?format=json
// GET /api/views/{id}/chart/option
func (h *ViewHandler) ChartOption(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	chart, err := session.Chart(r.Context())
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		option, err := render.OptionJSON(chart)
		if err != nil {
			respondFailure(w, h.logger, err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(option)
		return
	}

	var buf bytes.Buffer
	if err := render.HTML(&buf, chart); err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ChartPNG exports the chart as an image; ?width=&height= size it
// GET /api/views/{id}/chart.png
func (h *ViewHandler) ChartPNG(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	opts, err := pngOptions(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	chart, err := session.Chart(r.Context())
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := render.PNG(&buf, chart, opts); err != nil {
		if errors.Is(err, render.ErrNothingToPlot) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// SaveRequest names the view to store
type SaveRequest struct {
	Name string `json:"name"`
}

// Save stores the committed state under a name
// POST /api/views/{id}/save
func (h *ViewHandler) Save(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req SaveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name, err := views.NormalizeName(req.Name)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := session.State(r.Context())
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	view, err := h.saved.Save(r.Context(), name, snap.Committed)
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"session": session.ID(),
		"name":    view.Name,
	}).Info("View saved")

	respondJSON(w, http.StatusCreated, view)
}

// ListSaved lists saved views, newest first
// GET /api/saved-views
func (h *ViewHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	list, err := h.saved.List(r.Context())
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"views": list,
		"count": len(list),
	})
}

// OpenSaved starts a session from a saved view
// POST /api/saved-views/{name}/open
func (h *ViewHandler) OpenSaved(w http.ResponseWriter, r *http.Request) {
	view, err := h.saved.Get(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	session := h.registry.Open(view.State)
	snap, err := session.State(r.Context())
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, snap)
}

// DeleteSaved removes a saved view
// DELETE /api/saved-views/{name}
func (h *ViewHandler) DeleteSaved(w http.ResponseWriter, r *http.Request) {
	if err := h.saved.Delete(r.Context(), mux.Vars(r)["name"]); err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ViewHandler) session(w http.ResponseWriter, r *http.Request) (*controller.Session, bool) {
	session, err := h.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func pngOptions(r *http.Request) (render.PNGOptions, error) {
	var opts render.PNGOptions
	for name, dest := range map[string]*int{"width": &opts.Width, "height": &opts.Height} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 100 || v > 4000 {
			return render.PNGOptions{}, fmt.Errorf("%s must be between 100 and 4000", name)
		}
		*dest = v
	}
	return opts, nil
}
