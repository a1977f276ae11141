package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/entries"
	"github.com/DoomsdayProd/ccshop-panel/internal/errmsg"
	"github.com/DoomsdayProd/ccshop-panel/internal/server/models"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/shopspring/decimal"
)

// GetEntries is the storefront catalog listing. Card payloads are masked.
func (h *Handlers) GetEntries(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseListParams(r)

	filter := storage.EntryFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = entries.Status(status)
	} else {
		filter.Status = entries.StatusAvailable
	}

	if format := r.URL.Query().Get("format"); format != "" {
		filter.Format = entries.DataFormat(format)
	}

	items, total, err := h.storage.GetEntries(r.Context(), filter)
	if err != nil {
		h.log.Error("storage.GetEntries()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	resp := models.EntryListResponse{
		Items:  make([]models.PublicEntryResponse, 0, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}

	for _, entry := range items {
		resp.Items = append(resp.Items, models.NewPublicEntryResponse(entry))
	}

	handleJSONResponse(w, http.StatusOK, resp)
}

// GetAdminEntries lists catalog entries with full card payloads.
func (h *Handlers) GetAdminEntries(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseListParams(r)

	filter := storage.EntryFilter{
		Search: r.URL.Query().Get("search"),
		Status: entries.Status(r.URL.Query().Get("status")),
		Format: entries.DataFormat(r.URL.Query().Get("format")),
		Limit:  limit,
		Offset: offset,
	}

	items, total, err := h.storage.GetEntries(r.Context(), filter)
	if err != nil {
		h.log.Error("storage.GetEntries()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	resp := models.AdminEntryListResponse{
		Items:  make([]models.EntryResponse, 0, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}

	for _, entry := range items {
		resp.Items = append(resp.Items, models.NewEntryResponse(entry))
	}

	handleJSONResponse(w, http.StatusOK, resp)
}

// CreateEntries ingests a bulk upload. Unparsable lines are skipped, not
// rejected; an upload with zero parsable lines is a client error.
func (h *Handlers) CreateEntries(w http.ResponseWriter, r *http.Request) {
	var payload models.EntryCreateRequest

	if !h.decodeJSONBody(w, r, &payload) {
		return
	}

	if strings.TrimSpace(payload.Data) == "" {
		handleError(w, errmsg.ErrBulkDataEmpty)

		return
	}

	var defaultPrice decimal.Decimal
	if payload.Price != nil {
		defaultPrice = *payload.Price
	}

	var lineCount int

	for _, line := range strings.Split(strings.TrimSpace(payload.Data), "\n") {
		if strings.TrimSpace(line) != "" {
			lineCount++
		}
	}

	parsed := entries.ParseBulkData(payload.Data, defaultPrice)
	if len(parsed) == 0 {
		handleError(w, errmsg.ErrBulkDataEmpty)

		return
	}

	created, err := h.storage.CreateEntries(r.Context(), parsed)
	if err != nil {
		h.log.Error("storage.CreateEntries()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	resp := models.BulkUploadResponse{
		Created: len(created),
		Skipped: lineCount - len(created),
		Items:   make([]models.EntryResponse, 0, len(created)),
	}

	for _, entry := range created {
		resp.Items = append(resp.Items, models.NewEntryResponse(entry))
	}

	handleJSONResponse(w, http.StatusCreated, resp)
}

func (h *Handlers) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "entryID")
	if err != nil {
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	var payload models.EntryUpdateRequest

	if !h.decodeJSONBody(w, r, &payload) {
		return
	}

	update := storage.EntryUpdate{Price: payload.Price}

	if payload.Status != nil {
		status := entries.Status(*payload.Status)
		if err := entries.ValidateStatus(status); err != nil {
			handleError(w, errmsg.NewHTTPError(http.StatusBadRequest, err))

			return
		}

		update.Status = &status
	}

	if update.Price == nil && update.Status == nil {
		handleError(w, errmsg.ErrNoFieldsToUpdate)

		return
	}

	if update.Price != nil && update.Price.IsNegative() {
		handleError(w, errmsg.NewHTTPError(http.StatusBadRequest, entries.ErrEntryPriceNegative))

		return
	}

	entry, err := h.storage.UpdateEntry(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, storage.ErrEntryNotFound) {
			handleError(w, errmsg.ErrEntryNotFound)

			return
		}

		h.log.Error("storage.UpdateEntry()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, models.NewEntryResponse(entry))
}

func (h *Handlers) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "entryID")
	if err != nil {
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	if err := h.storage.DeleteEntry(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrEntryNotFound) {
			handleError(w, errmsg.ErrEntryNotFound)

			return
		}

		h.log.Error("storage.DeleteEntry()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, &JSONResponse{Message: "ok"})
}
