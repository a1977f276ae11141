package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/wallet"
	"github.com/DoomsdayProd/ccshop-panel/internal/errmsg"
	"github.com/DoomsdayProd/ccshop-panel/internal/server/models"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
)

// CreateWalletTransaction records a manual balance adjustment. The store
// applies the ledger insert and the balance delta atomically.
func (h *Handlers) CreateWalletTransaction(w http.ResponseWriter, r *http.Request) {
	var payload models.WalletTransactionRequest

	if !h.decodeJSONBody(w, r, &payload) {
		return
	}

	tx, err := wallet.NewTransaction(
		payload.UserID, payload.OrderID,
		wallet.TransactionType(payload.Type),
		payload.Amount, payload.Description,
	)
	if err != nil {
		handleError(w, errmsg.NewHTTPError(http.StatusBadRequest, err))

		return
	}

	created, usr, err := h.storage.CreateWalletTransaction(r.Context(), tx)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			handleError(w, errmsg.ErrUserNotFound)

			return
		}

		h.log.Error("storage.CreateWalletTransaction()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusCreated, models.WalletTransactionCreateResponse{
		Transaction: models.NewWalletTransactionResponse(created),
		User:        models.NewUserResponse(usr),
	})
}

func (h *Handlers) GetWalletTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseListParams(r)

	filter := storage.WalletFilter{
		Type:   wallet.TransactionType(r.URL.Query().Get("type")),
		Limit:  limit,
		Offset: offset,
	}

	if userID, err := parseQueryID(r, "user_id"); err == nil {
		filter.UserID = userID
	}

	items, total, err := h.storage.GetWalletTransactions(r.Context(), filter)
	if err != nil {
		h.log.Error("storage.GetWalletTransactions()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	resp := models.WalletTransactionListResponse{
		Items:  make([]models.WalletTransactionResponse, 0, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}

	for _, tx := range items {
		resp.Items = append(resp.Items, models.NewWalletTransactionResponse(tx))
	}

	handleJSONResponse(w, http.StatusOK, resp)
}
