package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meowv/blog/internal/model"
	"github.com/meowv/blog/internal/repository"
)

// PostDateLayout is how a post's creation time is shown to readers.
const PostDateLayout = "January 02, 2006 15:04:05"

// PostStore is the persistence PostService needs; *repository.Queries
// satisfies it.
type PostStore interface {
	CreatePost(ctx context.Context, arg repository.CreatePostParams) (repository.Post, error)
	GetPost(ctx context.Context, id int64) (repository.Post, error)
	GetPostByUrl(ctx context.Context, url string) (repository.Post, error)
	UpdatePost(ctx context.Context, arg repository.UpdatePostParams) (repository.Post, error)
	DeletePost(ctx context.Context, id int64) (int64, error)
}

type PostService struct {
	store  PostStore
	logger *slog.Logger
	now    func() time.Time
}

func NewPostService(store PostStore, logger *slog.Logger) *PostService {
	return &PostService{store: store, logger: logger, now: time.Now}
}

type PostInput struct {
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	Url          string     `json:"url"`
	Content      string     `json:"content"`
	CreationTime *time.Time `json:"creationTime"`
}

type PostResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Url          string `json:"url"`
	Content      string `json:"content"`
	CreationTime string `json:"creationTime"`
}

func postToResponse(p repository.Post) PostResponse {
	return PostResponse{
		ID:           p.ID,
		Title:        p.Title,
		Author:       p.Author,
		Url:          p.Url,
		Content:      p.Content,
		CreationTime: p.CreationTime.Format(PostDateLayout),
	}
}

func (s *PostService) Insert(ctx context.Context, input PostInput) (PostResponse, error) {
	input = normalizePostInput(input)
	if err := validatePostInput(input); err != nil {
		return PostResponse{}, err
	}
	if err := s.checkUrlUnique(ctx, input.Url, 0); err != nil {
		return PostResponse{}, err
	}

	created := s.now()
	if input.CreationTime != nil {
		created = *input.CreationTime
	}

	post, err := s.store.CreatePost(ctx, repository.CreatePostParams{
		Title:        input.Title,
		Author:       input.Author,
		Url:          input.Url,
		Content:      input.Content,
		CreationTime: created,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return PostResponse{}, errUrlInUse()
		}
		return PostResponse{}, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created", "post_id", post.ID, "url", post.Url)
	return postToResponse(post), nil
}

// Get looks a post up by its url slug.
func (s *PostService) Get(ctx context.Context, url string) (PostResponse, error) {
	post, err := s.store.GetPostByUrl(ctx, strings.TrimSpace(url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PostResponse{}, model.NewDomainError(model.ErrNotFound, "post not found")
		}
		return PostResponse{}, fmt.Errorf("fetching post: %w", err)
	}
	return postToResponse(post), nil
}

func (s *PostService) Update(ctx context.Context, id int64, input PostInput) (PostResponse, error) {
	input = normalizePostInput(input)
	if err := validatePostInput(input); err != nil {
		return PostResponse{}, err
	}

	existing, err := s.store.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PostResponse{}, model.NewDomainError(model.ErrNotFound, "post not found")
		}
		return PostResponse{}, fmt.Errorf("fetching post: %w", err)
	}

	if input.Url != existing.Url {
		if err := s.checkUrlUnique(ctx, input.Url, id); err != nil {
			return PostResponse{}, err
		}
	}

	created := existing.CreationTime
	if input.CreationTime != nil {
		created = *input.CreationTime
	}

	post, err := s.store.UpdatePost(ctx, repository.UpdatePostParams{
		ID:           id,
		Title:        input.Title,
		Author:       input.Author,
		Url:          input.Url,
		Content:      input.Content,
		CreationTime: created,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return PostResponse{}, errUrlInUse()
		}
		return PostResponse{}, fmt.Errorf("updating post: %w", err)
	}

	s.logger.Info("post updated", "post_id", post.ID)
	return postToResponse(post), nil
}

func (s *PostService) Delete(ctx context.Context, id int64) error {
	n, err := s.store.DeletePost(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if n == 0 {
		return model.NewDomainError(model.ErrNotFound, "post not found")
	}

	s.logger.Info("post deleted", "post_id", id)
	return nil
}

func (s *PostService) checkUrlUnique(ctx context.Context, url string, excludeID int64) error {
	existing, err := s.store.GetPostByUrl(ctx, url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("checking url uniqueness: %w", err)
	}
	if existing.ID != excludeID {
		return errUrlInUse()
	}
	return nil
}

func errUrlInUse() error {
	return model.NewFieldError(model.ErrAlreadyExists, "url", "url already in use")
}

// isUniqueViolation reports a Postgres unique_violation. checkUrlUnique runs
// outside the write, so a concurrent writer can still trip posts.url UNIQUE.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func normalizePostInput(in PostInput) PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Url = strings.TrimSpace(in.Url)
	return in
}

func validatePostInput(in PostInput) error {
	if in.Title == "" {
		return model.NewFieldError(model.ErrInvalidInput, "title", "title is required")
	}
	if in.Url == "" {
		return model.NewFieldError(model.ErrInvalidInput, "url", "url is required")
	}
	if strings.ContainsAny(in.Url, "/?# ") {
		return model.NewFieldError(model.ErrInvalidInput, "url", "url must be a single path segment")
	}
	return nil
}
