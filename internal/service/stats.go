package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// StatsStore is the counting surface of *repository.Queries. Implementations
// must be safe for concurrent use (a pool, not a single transaction).
type StatsStore interface {
	CountArticles(ctx context.Context) (int64, error)
	CountDeletedArticles(ctx context.Context) (int64, error)
	CountPosts(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
}

type StatsService struct {
	store  StatsStore
	logger *slog.Logger
}

func NewStatsService(store StatsStore, logger *slog.Logger) *StatsService {
	return &StatsService{store: store, logger: logger}
}

// DashboardStats holds aggregated counts for the admin dashboard.
type DashboardStats struct {
	TotalArticles   int64 `json:"total_articles"`
	DeletedArticles int64 `json:"deleted_articles"`
	TotalPosts      int64 `json:"total_posts"`
	TotalUsers      int64 `json:"total_users"`
}

func (s *StatsService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	count := func(name string, fn func(context.Context) (int64, error), dst *int64) {
		g.Go(func() error {
			n, err := fn(ctx)
			if err != nil {
				s.logger.Error("failed to count "+name, "error", err)
				return fmt.Errorf("counting %s: %w", name, err)
			}
			*dst = n
			return nil
		})
	}
	count("articles", s.store.CountArticles, &stats.TotalArticles)
	count("deleted articles", s.store.CountDeletedArticles, &stats.DeletedArticles)
	count("posts", s.store.CountPosts, &stats.TotalPosts)
	count("users", s.store.CountUsers, &stats.TotalUsers)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
