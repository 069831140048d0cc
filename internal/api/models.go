package api

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "arrive/internal/errors"
)

// Auth
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type LoginResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	httpErr := apperrors.ToHTTP(err)
	if httpErr.Code >= http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
	}
	http.Error(w, httpErr.Message, httpErr.Code)
}
