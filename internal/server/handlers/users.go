package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/users"
	"github.com/DoomsdayProd/ccshop-panel/internal/errmsg"
	"github.com/DoomsdayProd/ccshop-panel/internal/server/models"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
)

func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseListParams(r)

	filter := storage.UserFilter{
		Search: r.URL.Query().Get("search"),
		Status: users.Status(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	}

	items, total, err := h.storage.GetUsers(r.Context(), filter)
	if err != nil {
		h.log.Error("storage.GetUsers()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	resp := models.UserListResponse{
		Items:  make([]models.UserResponse, 0, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}

	for _, usr := range items {
		resp.Items = append(resp.Items, models.NewUserResponse(usr))
	}

	handleJSONResponse(w, http.StatusOK, resp)
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload models.UserCreateRequest

	if !h.decodeJSONBody(w, r, &payload) {
		return
	}

	usr, err := users.NewUser(payload.TelegramID, users.Profile{
		Username:  payload.Username,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		handleError(w, errmsg.NewHTTPError(http.StatusBadRequest, err))

		return
	}

	created, err := h.storage.CreateUser(r.Context(), usr)
	if err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			handleError(w, errmsg.ErrUserAlreadyExists)

			return
		}

		h.log.Error("storage.CreateUser()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusCreated, models.NewUserResponse(created))
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userID")
	if err != nil {
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	var payload models.UserUpdateRequest

	if !h.decodeJSONBody(w, r, &payload) {
		return
	}

	update := storage.UserUpdate{WalletBalance: payload.WalletBalance}

	if payload.Status != nil {
		status := users.Status(*payload.Status)
		if err := users.ValidateStatus(status); err != nil {
			handleError(w, errmsg.NewHTTPError(http.StatusBadRequest, err))

			return
		}

		update.Status = &status
	}

	if update.Status == nil && update.WalletBalance == nil {
		handleError(w, errmsg.ErrNoFieldsToUpdate)

		return
	}

	usr, err := h.storage.UpdateUser(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			handleError(w, errmsg.ErrUserNotFound)

			return
		}

		h.log.Error("storage.UpdateUser()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, models.NewUserResponse(usr))
}
