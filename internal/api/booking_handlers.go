package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"arrive/internal/auth"
	"arrive/internal/entities"
	"arrive/internal/service"
)

type BookingHandler struct {
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	booking, clientSecret, err := h.Service.RequestBooking(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entities.CreateBookingResponse{
		Booking:      entities.NewBookingResponse(*booking),
		ClientSecret: clientSecret,
	})
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	rows, err := h.Service.ListBookings(r.Context(), auth.UserID(r.Context()), role)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]entities.BookingResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, entities.NewBookingListResponse(row))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.Service.GetBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewBookingResponse(*booking))
}

func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	booking, err := h.Service.UpdateBooking(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewBookingResponse(*booking))
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.Service.ConfirmBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewBookingResponse(*booking))
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	_, err := h.Service.CancelBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Booking cancelled"})
}
