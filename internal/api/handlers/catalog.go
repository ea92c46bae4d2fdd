package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/draeangela/industry-data-visualizer/internal/catalog"
	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/search"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// Catalog is the sector and model listing the handler reads
type Catalog interface {
	Sectors(ctx context.Context) []contracts.Sector
	SectorSeries(ctx context.Context, raw string) (catalog.SectorListing, error)
	ModelMenu(ctx context.Context) []contracts.IndustryModel
}

// CatalogHandler serves sector pages, the model menu and search
type CatalogHandler struct {
	catalog  Catalog
	searcher search.Runner
	viewer   string
	logger   *logger.Logger
}

// NewCatalogHandler creates a new catalog handler. viewerPath prefixes the viewer links in sector listings.
func NewCatalogHandler(c Catalog, searcher search.Runner, viewerPath string, log *logger.Logger) *CatalogHandler {
	if viewerPath == "" {
		viewerPath = "/viewer"
	}
	return &CatalogHandler{
		catalog:  c,
		searcher: searcher,
		viewer:   viewerPath,
		logger:   log,
	}
}

// GetSectors lists FRED sectors
// GET /api/sectors
func (h *CatalogHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	sectors := h.catalog.Sectors(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sectors": sectors,
		"count":   len(sectors),
	})
}

// GetSectorSeries lists the series of a sector; {name} may use underscores for spaces.
// ?select=a,b adds the viewer link for those series.
// GET /api/sectors/{name}/series
func (h *CatalogHandler) GetSectorSeries(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["name"]
	if raw == "" {
		respondError(w, http.StatusBadRequest, "No sector selected")
		return
	}

	listing, err := h.catalog.SectorSeries(r.Context(), raw)
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	body := map[string]interface{}{
		"sector":       listing.Sector,
		"display_name": listing.DisplayName,
		"series":       listing.Series,
		"count":        len(listing.Series),
	}
	if sel := r.URL.Query().Get("select"); sel != "" {
		body["viewer_link"] = catalog.ViewerLink(h.viewer, contracts.ParseSeriesIDList(sel))
	}

	respondJSON(w, http.StatusOK, body)
}

// GetModels returns the model menu, "All Models" first
// GET /api/models
func (h *CatalogHandler) GetModels(w http.ResponseWriter, r *http.Request) {
	models := h.catalog.ModelMenu(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"models": models,
		"count":  len(models),
	})
}

// Search runs one search without debouncing
// GET /api/search?mode=&q=&sector=&model=
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode, err := search.ParseMode(q.Get("mode"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.searcher.Search(r.Context(), search.Query{
		Mode:     mode,
		Text:     q.Get("q"),
		SectorID: q.Get("sector"),
		ModelID:  q.Get("model"),
	})
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
