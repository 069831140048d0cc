package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"arrive/internal/auth"
	"arrive/internal/db"
	"arrive/internal/entities"
	"arrive/internal/service"
)

type ListingHandler struct {
	Service *service.ListingService
}

func NewListingHandler(svc *service.ListingService) *ListingHandler {
	return &ListingHandler{Service: svc}
}

func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	listings, err := h.Service.ListListings(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponses(listings))
}

func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.Service.GetListing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewListingResponse(*listing))
}

func (h *ListingHandler) MyListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Service.ListMyListings(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponses(listings))
}

func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req entities.ListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	listing, err := h.Service.CreateListing(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entities.NewListingResponse(*listing))
}

func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	var req entities.ListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	listing, err := h.Service.UpdateListing(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewListingResponse(*listing))
}

// DeleteListing deactivates the listing; history-preserving, never a hard
// delete.
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteListing(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Listing deactivated"})
}

func toListingResponses(listings []db.Listing) []entities.ListingResponse {
	resp := make([]entities.ListingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, entities.NewListingResponse(l))
	}
	return resp
}
