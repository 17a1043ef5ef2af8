package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"investorportal/internal/calendar"
	"investorportal/internal/store"
)

// CreateAccount handles the creation of a new account
func (s *Server) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var inception *time.Time
	if req.InceptionDate != "" {
		d, err := calendar.ParseDate(req.InceptionDate)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, "Invalid inception date")
			return
		}
		inception = &d
	}

	account, err := s.repo.CreateAccount(r.Context(), req.Name, req.Description, inception)
	if err != nil {
		s.logger.Error("Failed to create account: %v", err)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	s.respondWithJSON(w, http.StatusCreated, account)
}

// ListAccounts returns all accounts
func (s *Server) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.repo.Accounts(r.Context())
	if err != nil {
		s.logger.Error("Failed to query accounts: %v", err)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to fetch accounts")
		return
	}
	s.respondWithJSON(w, http.StatusOK, accounts)
}

// GetAccount returns a specific account by ID
func (s *Server) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	account, err := s.repo.Account(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondWithError(w, http.StatusNotFound, "Account not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to get account %d: %v", id, err)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to fetch account")
		return
	}
	s.respondWithJSON(w, http.StatusOK, account)
}

// DeleteAccount removes an account and its valuation history
func (s *Server) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	err = s.repo.DeleteAccount(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondWithError(w, http.StatusNotFound, "Account not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to delete account %d: %v", id, err)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	s.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}
