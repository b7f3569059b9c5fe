package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/meowv/blog/internal/model"
	"github.com/meowv/blog/internal/server/middleware"
	"github.com/meowv/blog/internal/service"
)

type ArticleHandler struct {
	articleService *service.ArticleService
}

func NewArticleHandler(articleService *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	items, total, err := h.articleService.List(r.Context(), limit, offset)
	if err != nil {
		model.ErrorResponse(w, err)
		return
	}
	model.JSONList(w, items, total, limit, offset)
}

func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "invalid article ID")
	if !ok {
		return
	}

	article, err := h.articleService.Get(r.Context(), id)
	if err != nil {
		model.ErrorResponse(w, err)
		return
	}
	model.JSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		model.ErrorResponse(w, model.NewDomainError(model.ErrInvalidInput, "invalid request body"))
		return
	}

	req.Author = authorOrCaller(r, req.Author)

	article, err := h.articleService.Insert(r.Context(), req)
	if err != nil {
		model.ErrorResponse(w, err)
		return
	}
	model.JSON(w, http.StatusCreated, article)
}

func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "invalid article ID")
	if !ok {
		return
	}

	var req service.ArticleInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		model.ErrorResponse(w, model.NewDomainError(model.ErrInvalidInput, "invalid request body"))
		return
	}

	article, err := h.articleService.Update(r.Context(), id, req)
	if err != nil {
		model.ErrorResponse(w, err)
		return
	}
	model.JSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "invalid article ID")
	if !ok {
		return
	}

	if err := h.articleService.Delete(r.Context(), id); err != nil {
		model.ErrorResponse(w, err)
		return
	}
	model.JSON(w, http.StatusOK, true)
}

// parseID reads the {id} URL parameter. On failure it writes the error
// response and returns false.
func parseID(w http.ResponseWriter, r *http.Request, msg string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		model.ErrorResponse(w, model.NewDomainError(model.ErrInvalidInput, msg))
		return 0, false
	}
	return id, true
}

func parsePagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// authorOrCaller keeps an explicit author and otherwise credits the
// authenticated caller.
func authorOrCaller(r *http.Request, author string) string {
	if strings.TrimSpace(author) != "" {
		return author
	}
	return middleware.GetName(r.Context())
}
