package queries

import (
	"context"
	"fmt"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// GetTranscriptQuery returns the full ordered message history of a deal
// with decisions attached, for audit export
type GetTranscriptQuery struct {
	DealID shared.ID
}

// GetTranscriptResponse carries the deal and its ordered messages
type GetTranscriptResponse struct {
	Deal     *deal.Deal
	Messages []*deal.Message
}

// GetTranscriptHandler handles transcript queries
type GetTranscriptHandler struct {
	store deal.Store
}

// NewGetTranscriptHandler creates a transcript query handler
func NewGetTranscriptHandler(store deal.Store) *GetTranscriptHandler {
	return &GetTranscriptHandler{store: store}
}

// Handle executes the transcript query
func (h *GetTranscriptHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetTranscriptQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	d, err := h.store.Deals().FindByID(ctx, query.DealID)
	if err != nil {
		return nil, err
	}
	messages, err := h.store.Messages().ListByDeal(ctx, d.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	return &GetTranscriptResponse{Deal: d, Messages: messages}, nil
}
