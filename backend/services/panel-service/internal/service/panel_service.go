package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"sensorpanel/backend/services/panel-service/internal/clients"
	"sensorpanel/backend/services/panel-service/internal/display"
	"sensorpanel/backend/services/panel-service/internal/metrics"
	"sensorpanel/backend/services/panel-service/internal/models"
)

// Fetcher loads the current measurement list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.Measurement, error)
}

// Outcome describes what a refresh did to the display.
type Outcome string

const (
	OutcomeUpdated    Outcome = "updated"
	OutcomeEmpty      Outcome = "empty"
	OutcomeFailed     Outcome = "failed"
	OutcomeSuperseded Outcome = "superseded"
	OutcomeCanceled   Outcome = "canceled"
)

// PanelService polls measurements and writes the panel slots.
type PanelService struct {
	fetcher Fetcher
	display display.Display
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// NewPanelService returns service instance. m may be nil.
func NewPanelService(fetcher Fetcher, d display.Display, m *metrics.Metrics, logger *zap.Logger) *PanelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PanelService{
		fetcher: fetcher,
		display: d,
		metrics: m,
		logger:  logger,
	}
}

// RefreshDisplay runs one poll cycle. Fetch failures are absorbed: both
// slots show TextLoadError and the cause is logged. An empty result leaves
// the display untouched. When calls overlap, writes of a call older than the
// last applied one are dropped.
func (s *PanelService) RefreshDisplay(ctx context.Context) Outcome {
	start := time.Now()
	token := s.nextToken()

	records, err := s.fetcher.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Debug("refresh canceled", zap.Error(err))
			return OutcomeCanceled
		}
		kind := string(clients.KindOf(err))
		if kind == "" {
			kind = "unknown"
		}
		s.logger.Error("failed to load measurements", zap.String("kind", kind), zap.Error(err))
		outcome := OutcomeFailed
		if !s.apply(ctx, token, errorTexts()) {
			outcome = OutcomeSuperseded
		}
		s.metrics.ObservePoll(string(OutcomeFailed), kind, time.Since(start))
		return outcome
	}

	if len(records) == 0 {
		s.logger.Debug("no measurements received, display unchanged")
		s.metrics.ObservePoll(string(OutcomeEmpty), "", time.Since(start))
		return OutcomeEmpty
	}

	outcome := OutcomeUpdated
	if !s.apply(ctx, token, SlotTexts(records)) {
		outcome = OutcomeSuperseded
	}
	s.metrics.ObservePoll(string(outcome), "", time.Since(start))
	return outcome
}

func (s *PanelService) nextToken() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// apply writes texts in slot order unless a newer call already wrote.
func (s *PanelService) apply(ctx context.Context, token uint64, texts map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token < s.applied {
		s.logger.Debug("dropping stale refresh", zap.Uint64("token", token), zap.Uint64("applied", s.applied))
		return false
	}
	s.applied = token

	for _, slot := range display.Slots {
		text, ok := texts[slot]
		if !ok {
			continue
		}
		if err := s.display.SetSlot(ctx, slot, text); err != nil {
			s.logger.Warn("failed to write display slot", zap.String("slot", slot), zap.Error(err))
		}
		s.metrics.SlotWritten(slot)
	}
	return true
}
