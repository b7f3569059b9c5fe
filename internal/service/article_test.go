package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meowv/blog/internal/model"
	"github.com/meowv/blog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memArticles is an in-memory ArticleStore.
type memArticles struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]repository.Article
	err    error
}

func newMemArticles() *memArticles {
	return &memArticles{rows: make(map[int64]repository.Article)}
}

func (m *memArticles) CreateArticle(_ context.Context, arg repository.CreateArticleParams) (repository.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return repository.Article{}, m.err
	}
	m.nextID++
	a := repository.Article{
		ID:              m.nextID,
		Title:           arg.Title,
		Author:          arg.Author,
		Source:          arg.Source,
		Url:             arg.Url,
		Summary:         arg.Summary,
		Content:         arg.Content,
		MetaKeywords:    arg.MetaKeywords,
		MetaDescription: arg.MetaDescription,
		CreationTime:    arg.CreationTime,
		PostTime:        arg.PostTime,
	}
	m.rows[a.ID] = a
	return a, nil
}

func (m *memArticles) GetArticle(_ context.Context, id int64) (repository.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || a.IsDeleted {
		return repository.Article{}, pgx.ErrNoRows
	}
	return a, nil
}

func (m *memArticles) live() []repository.Article {
	var out []repository.Article
	for _, a := range m.rows {
		if !a.IsDeleted {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memArticles) ListArticles(_ context.Context, arg repository.ListArticlesParams) ([]repository.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := m.live()
	start := int(arg.Offset)
	if start > len(live) {
		start = len(live)
	}
	end := start + int(arg.Limit)
	if end > len(live) {
		end = len(live)
	}
	return live[start:end], nil
}

func (m *memArticles) CountArticles(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.live())), nil
}

func (m *memArticles) UpdateArticle(_ context.Context, arg repository.UpdateArticleParams) (repository.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[arg.ID]
	if !ok || a.IsDeleted {
		return repository.Article{}, pgx.ErrNoRows
	}
	a.Title = arg.Title
	a.Author = arg.Author
	a.Source = arg.Source
	a.Url = arg.Url
	a.Summary = arg.Summary
	a.Content = arg.Content
	a.MetaKeywords = arg.MetaKeywords
	a.MetaDescription = arg.MetaDescription
	a.PostTime = arg.PostTime
	m.rows[a.ID] = a
	return a, nil
}

func (m *memArticles) SoftDeleteArticle(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || a.IsDeleted {
		return 0, nil
	}
	now := time.Now()
	a.IsDeleted = true
	a.DeletedAt = &now
	m.rows[id] = a
	return 1, nil
}

func TestValidateArticleInput(t *testing.T) {
	tests := []struct {
		name      string
		input     ArticleInput
		wantErr   bool
		wantField string
	}{
		{
			name:  "valid input",
			input: ArticleInput{Title: "Hello", Url: "https://meowv.com/hello"},
		},
		{
			name:      "empty title",
			input:     ArticleInput{Url: "https://meowv.com/hello"},
			wantErr:   true,
			wantField: "title",
		},
		{
			name:      "title too long",
			input:     ArticleInput{Title: string(make([]byte, 201)), Url: "u"},
			wantErr:   true,
			wantField: "title",
		},
		{
			name:      "empty url",
			input:     ArticleInput{Title: "Hello"},
			wantErr:   true,
			wantField: "url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateArticleInput(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var de *model.DomainError
			require.True(t, errors.As(err, &de))
			assert.True(t, errors.Is(err, model.ErrInvalidInput))
			assert.Equal(t, tt.wantField, de.Field)
		})
	}
}

func TestArticleServiceInsertAndGet(t *testing.T) {
	store := newMemArticles()
	svc := NewArticleService(store, discardLogger())
	fixed := time.Date(2020, 5, 1, 8, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	created, err := svc.Insert(ctx, ArticleInput{Title: "  Hello  ", Url: "https://meowv.com/hello", Author: "meowv"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", created.Title)
	assert.Equal(t, int32(0), created.Hits)
	assert.Equal(t, "2020-05-01T08:30:00Z", created.CreationTime)
	assert.Nil(t, created.PostTime)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.Get(ctx, 999)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = svc.Insert(ctx, ArticleInput{Title: "   "})
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestArticleServiceUpdate(t *testing.T) {
	store := newMemArticles()
	svc := NewArticleService(store, discardLogger())
	ctx := context.Background()

	created, err := svc.Insert(ctx, ArticleInput{Title: "Old", Url: "u"})
	require.NoError(t, err)

	postTime := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	updated, err := svc.Update(ctx, created.ID, ArticleInput{Title: "New", Url: "u2", PostTime: &postTime})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "u2", updated.Url)
	require.NotNil(t, updated.PostTime)
	assert.Equal(t, "2021-01-02T03:04:05Z", *updated.PostTime)

	_, err = svc.Update(ctx, 404, ArticleInput{Title: "x", Url: "y"})
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestArticleServiceDeleteIsSoft(t *testing.T) {
	store := newMemArticles()
	svc := NewArticleService(store, discardLogger())
	ctx := context.Background()

	created, err := svc.Insert(ctx, ArticleInput{Title: "Bye", Url: "u"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	// Row is kept but hidden.
	assert.True(t, store.rows[created.ID].IsDeleted)
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	err = svc.Delete(ctx, created.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = svc.Update(ctx, created.ID, ArticleInput{Title: "x", Url: "y"})
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestArticleServiceList(t *testing.T) {
	store := newMemArticles()
	svc := NewArticleService(store, discardLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Insert(ctx, ArticleInput{Title: "a", Url: "u"})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Delete(ctx, 3))

	items, total, err := svc.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, items, 2)
	assert.Equal(t, int64(5), items[0].ID)
	assert.Equal(t, int64(4), items[1].ID)

	items, _, err = svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, int64(1), items[1].ID)
}

func TestArticleServiceStoreError(t *testing.T) {
	store := newMemArticles()
	store.err = errors.New("connection refused")
	svc := NewArticleService(store, discardLogger())

	_, err := svc.Insert(context.Background(), ArticleInput{Title: "a", Url: "u"})
	require.Error(t, err)
	var de *model.DomainError
	assert.False(t, errors.As(err, &de), "infrastructure errors must not become domain errors")
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, defaultPageSize, 0},
		{-5, -1, defaultPageSize, 0},
		{10, 30, 10, 30},
		{1000, 0, maxPageSize, 0},
	}
	for _, tt := range tests {
		l, o := clampPage(tt.limit, tt.offset)
		assert.Equal(t, tt.wantLimit, l)
		assert.Equal(t, tt.wantOffset, o)
	}
}
