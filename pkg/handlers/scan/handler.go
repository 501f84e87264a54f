package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/de-tools/entra-atlas/pkg/adapters"
	"github.com/de-tools/entra-atlas/pkg/models/api"
	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/services/export"
	"github.com/de-tools/entra-atlas/pkg/services/scan"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
)

// TenantResolver returns the tenant a request acts on when none is given
// in the tenant query parameter.
type TenantResolver func(ctx context.Context) (string, error)

type Handler struct {
	controller scan.Controller
	tenant     TenantResolver
}

func NewHandler(controller scan.Controller, tenant TenantResolver) *Handler {
	return &Handler{controller: controller, tenant: tenant}
}

func (h *Handler) ListScans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, err := h.tenantID(r)
	if err != nil {
		h.error(w, r, http.StatusBadRequest, err)
		return
	}

	summaries, err := h.controller.History(ctx, tenantID)
	if err != nil {
		h.error(w, r, http.StatusInternalServerError, fmt.Errorf("failed to load scan history: %w", err))
		return
	}
	render.JSON(w, r, adapters.MapSummariesDomainToApi(summaries))
}

func (h *Handler) CreateScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	demo, _ := strconv.ParseBool(r.URL.Query().Get("demo"))

	tenantID, err := h.tenantID(r)
	if err != nil && !demo {
		h.error(w, r, http.StatusBadRequest, err)
		return
	}
	if demo {
		tenantID = ""
	}

	data, err := h.controller.GenerateScan(ctx, scan.Request{TenantID: tenantID, Demo: demo})
	if err != nil {
		h.error(w, r, http.StatusInternalServerError, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toApiScan(*data))
}

func (h *Handler) GetScan(w http.ResponseWriter, r *http.Request) {
	data, ok := h.loadScan(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, toApiScan(*data))
}

func (h *Handler) FixIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scanID := chi.URLParam(r, "scanID")
	issueID := chi.URLParam(r, "issueID")

	tenantID, err := h.tenantID(r)
	if err != nil && scanID == scan.LatestScanID {
		h.error(w, r, http.StatusBadRequest, err)
		return
	}

	data, err := h.controller.FixIssue(ctx, tenantID, scanID, issueID)
	if err != nil {
		h.error(w, r, statusFor(err), err)
		return
	}
	render.JSON(w, r, toApiScan(*data))
}

func (h *Handler) ExportScan(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.error(w, r, http.StatusBadRequest, err)
		return
	}
	data, ok := h.loadScan(w, r)
	if !ok {
		return
	}

	exporter, err := export.New(format)
	if err != nil {
		h.error(w, r, http.StatusBadRequest, err)
		return
	}
	var buf bytes.Buffer
	if err := exporter.Export(&buf, *data); err != nil {
		h.error(w, r, http.StatusInternalServerError, fmt.Errorf("export failed: %w", err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(*data, format)))
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error().Err(err).Str("scan_id", data.Summary.ID).Msg("failed to write export")
	}
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	removed, err := h.controller.ClearHistory(r.Context())
	if err != nil {
		h.error(w, r, http.StatusInternalServerError, err)
		return
	}
	render.JSON(w, r, api.ClearResult{Removed: removed})
}

func (h *Handler) loadScan(w http.ResponseWriter, r *http.Request) (*domain.ScanData, bool) {
	scanID := chi.URLParam(r, "scanID")
	tenantID, err := h.tenantID(r)
	if err != nil && scanID == scan.LatestScanID {
		h.error(w, r, http.StatusBadRequest, err)
		return nil, false
	}

	data, err := h.controller.GetScan(r.Context(), tenantID, scanID)
	if err != nil {
		h.error(w, r, statusFor(err), err)
		return nil, false
	}
	return data, true
}

func (h *Handler) tenantID(r *http.Request) (string, error) {
	if tenant := r.URL.Query().Get("tenant"); tenant != "" {
		return tenant, nil
	}
	if h.tenant == nil {
		return "", errors.New("tenant is required")
	}
	return h.tenant(r.Context())
}

func (h *Handler) error(w http.ResponseWriter, r *http.Request, status int, err error) {
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	render.Status(r, status)
	render.JSON(w, r, api.Error{Message: err.Error()})
}

func statusFor(err error) int {
	if errors.Is(err, scan.ErrScanNotFound) || errors.Is(err, scan.ErrIssueNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// toApiScan adds the score over the issues that are still open.
func toApiScan(data domain.ScanData) api.Scan {
	current := scan.RiskScore(data.Issues)
	return adapters.MapScanDataDomainToApi(data, current, scan.Badge(current))
}
