package persistence

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// NegotiationLogEntry is one persisted log row for a deal
type NegotiationLogEntry struct {
	DealID    string
	Timestamp string
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// GormNegotiationLogRepository persists and reads per-deal log rows
type GormNegotiationLogRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormNegotiationLogRepository creates a new GORM negotiation log repository
func NewGormNegotiationLogRepository(db *gorm.DB, clock shared.Clock) *GormNegotiationLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormNegotiationLogRepository{db: db, clock: clock}
}

// Append writes one log row; failures are returned but callers are
// expected to swallow them off the critical path
func (r *GormNegotiationLogRepository) Append(ctx context.Context, dealID shared.ID, level, message string, metadata map[string]interface{}) error {
	model := &NegotiationLogModel{
		DealID:    dealID.String(),
		Timestamp: r.clock.Now(),
		Level:     level,
		Message:   message,
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			model.MetadataJSON = string(raw)
		}
	}
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return shared.NewTransientDependencyError("failed to append negotiation log", result.Error)
	}
	return nil
}

// ListByDeal returns a deal's log rows oldest first
func (r *GormNegotiationLogRepository) ListByDeal(ctx context.Context, dealID shared.ID) ([]NegotiationLogEntry, error) {
	var models []NegotiationLogModel
	result := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID.String()).
		Order("id asc").
		Find(&models)
	if result.Error != nil {
		return nil, shared.NewTransientDependencyError("failed to list negotiation logs", result.Error)
	}

	entries := make([]NegotiationLogEntry, 0, len(models))
	for _, model := range models {
		entry := NegotiationLogEntry{
			DealID:    model.DealID,
			Timestamp: model.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Level:     model.Level,
			Message:   model.Message,
		}
		if model.MetadataJSON != "" {
			_ = json.Unmarshal([]byte(model.MetadataJSON), &entry.Metadata)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DealLogWriter adapts the log repository to the context logger
// interface for a single deal. Write failures are swallowed; logging
// never fails the pipeline.
type DealLogWriter struct {
	repo   *GormNegotiationLogRepository
	dealID shared.ID
}

// NewDealLogWriter creates a logger bound to one deal
func NewDealLogWriter(repo *GormNegotiationLogRepository, dealID shared.ID) *DealLogWriter {
	return &DealLogWriter{repo: repo, dealID: dealID}
}

// Log persists one structured row for the deal
func (w *DealLogWriter) Log(level, message string, metadata map[string]interface{}) {
	_ = w.repo.Append(context.Background(), w.dealID, level, message, metadata)
}
