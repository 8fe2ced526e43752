package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// roleOrder sorts VENDOR before ACCORDO within a round
const roleOrder = "CASE role WHEN 'VENDOR' THEN 0 WHEN 'ACCORDO' THEN 1 ELSE 2 END"

// GormMessageRepository implements deal.MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM message repository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Add persists a message; saving a message whose id already exists is a
// no-op, and a (deal, round, role) collision surfaces as a conflict
func (r *GormMessageRepository) Add(ctx context.Context, m *deal.Message) error {
	model, err := r.entityToModel(m)
	if err != nil {
		return fmt.Errorf("failed to convert message to model: %w", err)
	}

	var existing MessageModel
	found := r.db.WithContext(ctx).Where("id = ?", model.ID).First(&existing)
	if found.Error == nil {
		return nil // idempotent on id
	}
	if !errors.Is(found.Error, gorm.ErrRecordNotFound) {
		return shared.NewTransientDependencyError("failed to check message", found.Error)
	}

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return shared.NewConflictError(
				fmt.Sprintf("message already exists for deal %s round %d role %s", model.DealID, model.Round, model.Role),
				"")
		}
		return shared.NewTransientDependencyError("failed to create message", result.Error)
	}
	return nil
}

// ListByDeal returns all messages for a deal ordered by (round, role)
func (r *GormMessageRepository) ListByDeal(ctx context.Context, dealID shared.ID) ([]*deal.Message, error) {
	var models []MessageModel
	result := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID.String()).
		Order("round asc").
		Order(roleOrder + " asc").
		Find(&models)
	if result.Error != nil {
		return nil, shared.NewTransientDependencyError("failed to list messages", result.Error)
	}

	messages := make([]*deal.Message, 0, len(models))
	for i := range models {
		m, err := r.modelToEntity(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert message %s: %w", models[i].ID, err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// FindLast returns the most recent message for a role, optionally
// restricted to messages carrying an extracted offer. Returns nil when
// no such message exists.
func (r *GormMessageRepository) FindLast(ctx context.Context, dealID shared.ID, role deal.Role, withOffer bool) (*deal.Message, error) {
	query := r.db.WithContext(ctx).
		Where("deal_id = ? AND role = ?", dealID.String(), string(role)).
		Order("round desc")
	if withOffer {
		query = query.Where("offer != ''")
	}

	var model MessageModel
	result := query.First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, shared.NewTransientDependencyError("failed to find last message", result.Error)
	}
	return r.modelToEntity(&model)
}

func (r *GormMessageRepository) modelToEntity(model *MessageModel) (*deal.Message, error) {
	m := &deal.Message{
		ID:        shared.MustParseID(model.ID),
		DealID:    shared.MustParseID(model.DealID),
		Role:      deal.Role(model.Role),
		Round:     model.Round,
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
	}

	var err error
	if m.Offer, err = unmarshalOffer(model.OfferJSON); err != nil {
		return nil, err
	}
	if model.AccumulatedJSON != "" {
		m.Accumulated = &deal.AccumulatedOffer{}
		if err := json.Unmarshal([]byte(model.AccumulatedJSON), m.Accumulated); err != nil {
			return nil, shared.NewPermanentDependencyError("malformed accumulated offer", err)
		}
	}
	if model.DecisionJSON != "" {
		m.Decision = &deal.Decision{}
		if err := json.Unmarshal([]byte(model.DecisionJSON), m.Decision); err != nil {
			return nil, shared.NewPermanentDependencyError("malformed decision", err)
		}
	}
	return m, nil
}

func (r *GormMessageRepository) entityToModel(m *deal.Message) (*MessageModel, error) {
	model := &MessageModel{
		ID:        m.ID.String(),
		DealID:    m.DealID.String(),
		Role:      string(m.Role),
		Round:     m.Round,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}

	var err error
	if model.OfferJSON, err = marshalOffer(m.Offer); err != nil {
		return nil, err
	}
	if m.Accumulated != nil {
		raw, err := json.Marshal(m.Accumulated)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal accumulated offer: %w", err)
		}
		model.AccumulatedJSON = string(raw)
	}
	if m.Decision != nil {
		raw, err := json.Marshal(m.Decision)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal decision: %w", err)
		}
		model.DecisionJSON = string(raw)
	}
	return model, nil
}

// isUniqueViolation matches unique-constraint errors across sqlite and
// postgres drivers
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique failed") ||
		strings.Contains(msg, "duplicate key")
}
