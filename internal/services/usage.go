package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-authgate/pairgate/internal/models"
	"github.com/go-authgate/pairgate/internal/store"
	"github.com/go-authgate/pairgate/internal/util"

	"github.com/google/uuid"
)

const (
	defaultUsageLevel = "info"
	maxEventLength    = 100
)

var usageLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// UsageEvent is a client-reported event.
type UsageEvent struct {
	Event     string
	Level     string
	Data      map[string]any
	UserAgent string
}

type UsageService struct {
	store *store.Store
}

func NewUsageService(s *store.Store) *UsageService {
	return &UsageService{store: s}
}

// Record stores a usage event for userID synchronously.
func (s *UsageService) Record(ctx context.Context, userID string, ev UsageEvent) error {
	if userID == "" {
		return ErrUnauthorized
	}

	event := strings.TrimSpace(ev.Event)
	if event == "" {
		return fmt.Errorf("%w: event is required", ErrInvalidRequest)
	}
	if len(event) > maxEventLength {
		return fmt.Errorf("%w: event is too long", ErrInvalidRequest)
	}

	level := strings.ToLower(strings.TrimSpace(ev.Level))
	if level == "" {
		level = defaultUsageLevel
	}
	if !usageLevels[level] {
		return fmt.Errorf("%w: unknown level %q", ErrInvalidRequest, ev.Level)
	}

	entry := &models.UsageLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Event:     event,
		Level:     level,
		Data:      ev.Data,
		UserAgent: ev.UserAgent,
		ClientIP:  util.GetIPFromContext(ctx),
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateUsageLog(ctx, entry); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return nil
}

// Recent returns the newest events for userID.
func (s *UsageService) Recent(ctx context.Context, userID string, limit int) ([]models.UsageLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	logs, err := s.store.ListUsageLogsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return logs, nil
}
