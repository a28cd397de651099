package service

import (
	"context"
	"time"

	"github.com/Khadka1996/everestnews-server/internal/repository"
	"github.com/Khadka1996/everestnews-server/pkg/logger"
)

// PublishScheduler promotes scheduled articles to published once their
// publish date passes. It runs a single ticker loop; each tick is one
// bulk update against the store.
type PublishScheduler struct {
	repo     repository.ArticleRepository
	articles *ArticleService
	interval time.Duration
	stopChan chan struct{}
	logger   *logger.Logger
}

// NewPublishScheduler creates the scheduler. It does not start it.
func NewPublishScheduler(repo repository.ArticleRepository, articles *ArticleService, interval time.Duration, log *logger.Logger) *PublishScheduler {
	return &PublishScheduler{
		repo:     repo,
		articles: articles,
		interval: interval,
		stopChan: make(chan struct{}),
		logger:   log.WithComponent("publish-scheduler"),
	}
}

// Start runs the scheduling loop until the context is cancelled or
// Stop is called. Call it on its own goroutine.
func (s *PublishScheduler) Start(ctx context.Context) {
	s.logger.Info("Publish scheduler started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Publish scheduler stopped", "reason", "context cancelled")
			return
		case <-s.stopChan:
			s.logger.Info("Publish scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Stop signals the loop to exit.
func (s *PublishScheduler) Stop() {
	close(s.stopChan)
}

func (s *PublishScheduler) tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	promoted, err := s.repo.PublishDue(tickCtx, time.Now())
	if err != nil {
		s.logger.Error("Failed to publish scheduled articles", "error", err)
		return
	}
	if promoted == 0 {
		return
	}

	// Promotions change which listings an article appears in, so they
	// invalidate like any other write.
	keys, prefixes := s.articles.keys.OnCreate()
	s.articles.inv.InvalidateAsync(keys, prefixes)

	s.logger.Info("Scheduled articles published", "count", promoted)
}
