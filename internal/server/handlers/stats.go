package handlers

import (
	"log/slog"
	"net/http"

	"github.com/DoomsdayProd/ccshop-panel/internal/errmsg"
	"github.com/DoomsdayProd/ccshop-panel/internal/server/models"
)

func (h *Handlers) GetSalesStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.storage.GetSalesStats(r.Context())
	if err != nil {
		h.log.Error("storage.GetSalesStats()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, models.SalesStatsResponse{
		TotalOrders:   stats.TotalOrders,
		TotalSales:    stats.TotalSales.InexactFloat64(),
		OrdersToday:   stats.OrdersToday,
		SalesToday:    stats.SalesToday.InexactFloat64(),
		PendingOrders: stats.PendingOrders,
	})
}

func (h *Handlers) GetStockStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.storage.GetStockStats(r.Context())
	if err != nil {
		h.log.Error("storage.GetStockStats()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, models.StockStatsResponse{
		Available: stats.Available,
		Reserved:  stats.Reserved,
		Sold:      stats.Sold,
	})
}

func (h *Handlers) GetUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.storage.GetUserStats(r.Context())
	if err != nil {
		h.log.Error("storage.GetUserStats()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, models.UserStatsResponse{
		TotalUsers:  stats.TotalUsers,
		ActiveUsers: stats.ActiveUsers,
		BannedUsers: stats.BannedUsers,
		NewToday:    stats.NewToday,
	})
}
