package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/orders"
	"github.com/DoomsdayProd/ccshop-panel/internal/errmsg"
	"github.com/DoomsdayProd/ccshop-panel/internal/lifecycle"
	"github.com/DoomsdayProd/ccshop-panel/internal/server/models"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
)

// CreateOrder places a purchase attempt against a catalog entry.
func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var payload models.OrderCreateRequest

	if !h.decodeJSONBody(w, r, &payload) {
		return
	}

	res, err := h.lifecycle.CreateOrder(r.Context(), lifecycle.CreateOrderRequest{
		UserID:         payload.UserID,
		TelegramUserID: payload.TelegramUserID,
		Username:       payload.Username,
		FirstName:      payload.FirstName,
		DataEntryID:    payload.DataEntryID,
		PaymentMethod:  orders.PaymentMethod(payload.PaymentMethod),
		CryptoAddress:  payload.CryptoAddress,
		InvoiceID:      payload.InvoiceID,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEntryUnavailable):
			handleError(w, errmsg.ErrEntryUnavailable)
		case errors.Is(err, orders.ErrPaymentMethodInvalid),
			errors.Is(err, orders.ErrDataEntryIDInvalid),
			errors.Is(err, orders.ErrUserRefMissing):
			handleError(w, errmsg.NewHTTPError(http.StatusBadRequest, err))
		default:
			h.log.Error("lifecycle.CreateOrder()", slog.Any("error", err))
			handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))
		}

		return
	}

	handleJSONResponse(w, http.StatusCreated, models.OrderCreateResponse{
		Order:         models.NewOrderResponse(res.Order),
		Entry:         models.NewEntryResponse(res.Entry),
		UserNotified:  res.UserNotified,
		AdminNotified: res.AdminNotified,
	})
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseListParams(r)

	filter := storage.OrderFilter{
		Status: orders.PaymentStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	}

	if userID, err := parseQueryID(r, "user_id"); err == nil {
		filter.UserID = userID
	}

	if telegramUserID, err := parseQueryID(r, "telegram_user_id"); err == nil {
		filter.TelegramUserID = telegramUserID
	}

	items, total, err := h.storage.GetOrders(r.Context(), filter)
	if err != nil {
		h.log.Error("storage.GetOrders()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	resp := models.OrderListResponse{
		Items:  make([]models.OrderResponse, 0, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}

	for _, ord := range items {
		resp.Items = append(resp.Items, models.NewOrderResponse(ord))
	}

	handleJSONResponse(w, http.StatusOK, resp)
}

// UpdateOrder transitions an order's payment state. The cascade to the entry
// status and the buyer's aggregates happens atomically in the store.
func (h *Handlers) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "orderID")
	if err != nil {
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	var payload models.OrderUpdateRequest

	if !h.decodeJSONBody(w, r, &payload) {
		return
	}

	update := storage.OrderUpdate{
		CryptoAddress: payload.CryptoAddress,
		InvoiceID:     payload.InvoiceID,
	}

	if payload.PaymentStatus != nil {
		status := orders.PaymentStatus(*payload.PaymentStatus)
		update.PaymentStatus = &status
	}

	if payload.PaymentMethod != nil {
		method := orders.PaymentMethod(*payload.PaymentMethod)
		if err := orders.ValidatePaymentMethod(method); err != nil {
			handleError(w, errmsg.NewHTTPError(http.StatusBadRequest, err))

			return
		}

		update.PaymentMethod = &method
	}

	res, err := h.lifecycle.TransitionOrderStatus(r.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrOrderNotFound):
			handleError(w, errmsg.ErrOrderNotFound)
		case errors.Is(err, storage.ErrNoFieldsToUpdate):
			handleError(w, errmsg.ErrNoFieldsToUpdate)
		case errors.Is(err, storage.ErrOrderConflict):
			handleError(w, errmsg.ErrOrderConflict)
		case errors.Is(err, orders.ErrPaymentStatusInvalid):
			handleError(w, errmsg.NewHTTPError(http.StatusBadRequest, err))
		default:
			h.log.Error("lifecycle.TransitionOrderStatus()", slog.Any("error", err))
			handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))
		}

		return
	}

	handleJSONResponse(w, http.StatusOK, models.NewOrderResponse(res.Order))
}
