package service

import (
	"context"
	"fmt"
	"time"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
)

type ButtonPressService interface {
	// Press appends one press stamped with the current instant. Every call
	// adds a record.
	Press(ctx context.Context) error
	// Summary returns the tally and the most recent presses, newest first.
	Summary(ctx context.Context) (*domain.PressSummary, error)
}

type ButtonPressOption func(*buttonPressService)

// WithClock replaces time.Now as the source of pressedAt.
func WithClock(now func() time.Time) ButtonPressOption {
	return func(s *buttonPressService) {
		if now != nil {
			s.now = now
		}
	}
}

type buttonPressService struct {
	repo domain.ButtonPressRepository
	now  func() time.Time
}

func NewButtonPressService(repo domain.ButtonPressRepository, opts ...ButtonPressOption) ButtonPressService {
	s := &buttonPressService{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *buttonPressService) Press(ctx context.Context) error {
	if err := s.repo.Insert(ctx, domain.FormatTimestamp(s.now())); err != nil {
		return fmt.Errorf("failed to record press: %w", err)
	}
	return nil
}

func (s *buttonPressService) Summary(ctx context.Context) (*domain.PressSummary, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count presses: %w", err)
	}

	recent, err := s.repo.Recent(ctx, domain.RecentPressLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent presses: %w", err)
	}
	if len(recent) > domain.RecentPressLimit {
		recent = recent[:domain.RecentPressLimit]
	}

	entries := make([]domain.PressEntry, 0, len(recent))
	for _, p := range recent {
		entries = append(entries, domain.NewPressEntry(p))
	}

	return &domain.PressSummary{Total: total, Entries: entries}, nil
}
