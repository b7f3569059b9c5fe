package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meowv/blog/internal/model"
	"github.com/meowv/blog/internal/service"
)

type AuthorizeHandler struct {
	authorizeService *service.AuthorizeService
}

func NewAuthorizeHandler(authorizeService *service.AuthorizeService) *AuthorizeHandler {
	return &AuthorizeHandler{authorizeService: authorizeService}
}

type accountTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// GetAuthorizeURL returns the provider authorize URL for {type}. The client
// navigates there itself; no redirect is sent.
func (h *AuthorizeHandler) GetAuthorizeURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.authorizeService.GetAuthorizeURL(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		model.ErrorResponse(w, err)
		return
	}
	model.JSON(w, http.StatusOK, url)
}

// Token completes the OAuth login with the code and state the provider sent
// back to the frontend.
func (h *AuthorizeHandler) Token(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tok, err := h.authorizeService.CompleteOAuthLogin(r.Context(), chi.URLParam(r, "type"), q.Get("code"), q.Get("state"))
	if err != nil {
		model.ErrorResponse(w, err)
		return
	}
	model.JSON(w, http.StatusOK, tok)
}

func (h *AuthorizeHandler) AccountToken(w http.ResponseWriter, r *http.Request) {
	var req accountTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		model.ErrorResponse(w, model.NewDomainError(model.ErrInvalidInput, "invalid request body"))
		return
	}

	tok, err := h.authorizeService.CompleteAccountLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		model.ErrorResponse(w, err)
		return
	}
	model.JSON(w, http.StatusOK, tok)
}
