package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/meowv/blog/internal/config"
)

// ArticlePurger removes soft-deleted articles older than a cutoff.
type ArticlePurger interface {
	PurgeDeletedArticles(ctx context.Context, cutoff time.Time) (int64, error)
}

type CleanupService struct {
	store  ArticlePurger
	cfg    config.CleanupConfig
	logger *slog.Logger
	now    func() time.Time

	// firstRun is the delay before the first pass after Run starts.
	firstRun time.Duration
}

type CleanupResult struct {
	PurgedArticles int64 `json:"purged_articles"`
}

func NewCleanupService(store ArticlePurger, cfg config.CleanupConfig, logger *slog.Logger) *CleanupService {
	return &CleanupService{
		store:    store,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		firstRun: time.Minute,
	}
}

// Run purges on the configured interval until ctx is done. It returns nil
// when disabled or cancelled so it can run inside an errgroup.
func (s *CleanupService) Run(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logger.Info("cleanup worker disabled")
		return nil
	}

	interval := s.cfg.Interval
	if interval < time.Minute {
		interval = time.Minute
	}

	timer := time.NewTimer(s.firstRun)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			result, err := s.RunNow(ctx)
			if err != nil {
				s.logger.Error("scheduled cleanup failed", "error", err)
			} else {
				s.logger.Info("scheduled cleanup completed", "purged_articles", result.PurgedArticles)
			}
			timer.Reset(interval)
		}
	}
}

// RunNow purges articles soft-deleted more than RetentionDays ago.
func (s *CleanupService) RunNow(ctx context.Context) (CleanupResult, error) {
	cutoff := s.now().AddDate(0, 0, -s.retentionDays())
	count, err := s.store.PurgeDeletedArticles(ctx, cutoff)
	if err != nil {
		return CleanupResult{}, err
	}
	return CleanupResult{PurgedArticles: count}, nil
}

func (s *CleanupService) retentionDays() int {
	if s.cfg.RetentionDays < 1 {
		return 1
	}
	return s.cfg.RetentionDays
}
