package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meowv/blog/internal/model"
	"github.com/meowv/blog/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ArticleStore is the persistence ArticleService needs; *repository.Queries
// satisfies it.
type ArticleStore interface {
	CreateArticle(ctx context.Context, arg repository.CreateArticleParams) (repository.Article, error)
	GetArticle(ctx context.Context, id int64) (repository.Article, error)
	ListArticles(ctx context.Context, arg repository.ListArticlesParams) ([]repository.Article, error)
	CountArticles(ctx context.Context) (int64, error)
	UpdateArticle(ctx context.Context, arg repository.UpdateArticleParams) (repository.Article, error)
	SoftDeleteArticle(ctx context.Context, id int64) (int64, error)
}

type ArticleService struct {
	store  ArticleStore
	logger *slog.Logger
	now    func() time.Time
}

func NewArticleService(store ArticleStore, logger *slog.Logger) *ArticleService {
	return &ArticleService{store: store, logger: logger, now: time.Now}
}

type ArticleInput struct {
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Source          string     `json:"source"`
	Url             string     `json:"url"`
	Summary         string     `json:"summary"`
	Content         string     `json:"content"`
	MetaKeywords    string     `json:"metaKeywords"`
	MetaDescription string     `json:"metaDescription"`
	PostTime        *time.Time `json:"postTime"`
}

type ArticleResponse struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Source          string  `json:"source"`
	Url             string  `json:"url"`
	Summary         string  `json:"summary"`
	Content         string  `json:"content"`
	Hits            int32   `json:"hits"`
	MetaKeywords    string  `json:"metaKeywords"`
	MetaDescription string  `json:"metaDescription"`
	CreationTime    string  `json:"creationTime"`
	PostTime        *string `json:"postTime"`
}

func articleToResponse(a repository.Article) ArticleResponse {
	resp := ArticleResponse{
		ID:              a.ID,
		Title:           a.Title,
		Author:          a.Author,
		Source:          a.Source,
		Url:             a.Url,
		Summary:         a.Summary,
		Content:         a.Content,
		Hits:            a.Hits,
		MetaKeywords:    a.MetaKeywords,
		MetaDescription: a.MetaDescription,
		CreationTime:    a.CreationTime.Format(time.RFC3339),
	}
	if a.PostTime != nil {
		s := a.PostTime.Format(time.RFC3339)
		resp.PostTime = &s
	}
	return resp
}

func (s *ArticleService) Insert(ctx context.Context, input ArticleInput) (ArticleResponse, error) {
	input = normalizeArticleInput(input)
	if err := validateArticleInput(input); err != nil {
		return ArticleResponse{}, err
	}

	article, err := s.store.CreateArticle(ctx, repository.CreateArticleParams{
		Title:           input.Title,
		Author:          input.Author,
		Source:          input.Source,
		Url:             input.Url,
		Summary:         input.Summary,
		Content:         input.Content,
		MetaKeywords:    input.MetaKeywords,
		MetaDescription: input.MetaDescription,
		CreationTime:    s.now(),
		PostTime:        input.PostTime,
	})
	if err != nil {
		return ArticleResponse{}, fmt.Errorf("creating article: %w", err)
	}

	s.logger.Info("article created", "article_id", article.ID, "title", article.Title)
	return articleToResponse(article), nil
}

func (s *ArticleService) Get(ctx context.Context, id int64) (ArticleResponse, error) {
	article, err := s.store.GetArticle(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ArticleResponse{}, model.NewDomainError(model.ErrNotFound, "article not found")
		}
		return ArticleResponse{}, fmt.Errorf("fetching article: %w", err)
	}
	return articleToResponse(article), nil
}

// List returns one page of live articles, newest first, and the live total.
func (s *ArticleService) List(ctx context.Context, limit, offset int) ([]ArticleResponse, int64, error) {
	limit, offset = clampPage(limit, offset)

	articles, err := s.store.ListArticles(ctx, repository.ListArticlesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing articles: %w", err)
	}

	total, err := s.store.CountArticles(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting articles: %w", err)
	}

	result := make([]ArticleResponse, len(articles))
	for i, a := range articles {
		result[i] = articleToResponse(a)
	}
	return result, total, nil
}

// Update replaces the editable fields of a live article.
func (s *ArticleService) Update(ctx context.Context, id int64, input ArticleInput) (ArticleResponse, error) {
	input = normalizeArticleInput(input)
	if err := validateArticleInput(input); err != nil {
		return ArticleResponse{}, err
	}

	if _, err := s.Get(ctx, id); err != nil {
		return ArticleResponse{}, err
	}

	article, err := s.store.UpdateArticle(ctx, repository.UpdateArticleParams{
		ID:              id,
		Title:           input.Title,
		Author:          input.Author,
		Source:          input.Source,
		Url:             input.Url,
		Summary:         input.Summary,
		Content:         input.Content,
		MetaKeywords:    input.MetaKeywords,
		MetaDescription: input.MetaDescription,
		PostTime:        input.PostTime,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ArticleResponse{}, model.NewDomainError(model.ErrNotFound, "article not found")
		}
		return ArticleResponse{}, fmt.Errorf("updating article: %w", err)
	}

	s.logger.Info("article updated", "article_id", article.ID)
	return articleToResponse(article), nil
}

// Delete marks the article deleted. The row stays until the cleanup worker
// purges it.
func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	n, err := s.store.SoftDeleteArticle(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	if n == 0 {
		return model.NewDomainError(model.ErrNotFound, "article not found")
	}

	s.logger.Info("article deleted", "article_id", id)
	return nil
}

func normalizeArticleInput(in ArticleInput) ArticleInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Source = strings.TrimSpace(in.Source)
	in.Url = strings.TrimSpace(in.Url)
	return in
}

func validateArticleInput(in ArticleInput) error {
	if in.Title == "" {
		return model.NewFieldError(model.ErrInvalidInput, "title", "title is required")
	}
	if len(in.Title) > 200 {
		return model.NewFieldError(model.ErrInvalidInput, "title", "title must be at most 200 characters")
	}
	if in.Url == "" {
		return model.NewFieldError(model.ErrInvalidInput, "url", "url is required")
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
