package commands

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/services"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/negotiation"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

const (
	storeRetryAttempts = 3
	storeRetryBase     = 50 * time.Millisecond
)

// GeneratePMResponseCommand is Phase-2 of the pipeline: decide on the
// pending vendor message, generate the response prose and commit the
// round atomically.
type GeneratePMResponseCommand struct {
	DealID shared.ID
}

// GeneratePMResponseResponse carries the committed round
type GeneratePMResponseResponse struct {
	Message  *deal.Message
	Decision *deal.Decision
	Deal     *deal.Deal
}

// GeneratePMResponseHandler handles Phase-2 PM responses
type GeneratePMResponseHandler struct {
	store     deal.Store
	locks     *services.DealLockTable
	generator *services.ResponseGenerator
	cache     *services.SuggestionCache
	warmer    *services.SuggestionWarmer
	hooks     *services.HookPool
	notifier  common.Notifier
	engine    *negotiation.Engine
	meso      *negotiation.MesoGenerator
	builder   *negotiation.ConfigBuilder
	clock     shared.Clock
}

// NewGeneratePMResponseHandler creates a Phase-2 handler
func NewGeneratePMResponseHandler(
	store deal.Store,
	locks *services.DealLockTable,
	generator *services.ResponseGenerator,
	cache *services.SuggestionCache,
	warmer *services.SuggestionWarmer,
	hooks *services.HookPool,
	notifier common.Notifier,
	clock shared.Clock,
) *GeneratePMResponseHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GeneratePMResponseHandler{
		store:     store,
		locks:     locks,
		generator: generator,
		cache:     cache,
		warmer:    warmer,
		hooks:     hooks,
		notifier:  notifier,
		engine:    negotiation.NewEngine(),
		meso:      negotiation.NewMesoGenerator(),
		builder:   negotiation.NewConfigBuilder(),
		clock:     clock,
	}
}

// Handle executes Phase-2 under the per-deal lock
func (h *GeneratePMResponseHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*GeneratePMResponseCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	h.locks.Lock(cmd.DealID)
	defer h.locks.Unlock(cmd.DealID)

	return h.HandleLocked(ctx, cmd)
}

// HandleLocked executes Phase-2 assuming the caller holds the per-deal
// lock
func (h *GeneratePMResponseHandler) HandleLocked(ctx context.Context, cmd *GeneratePMResponseCommand) (*GeneratePMResponseResponse, error) {
	logger := common.LoggerFromContext(ctx)

	d, err := h.store.Deals().FindByID(ctx, cmd.DealID)
	if err != nil {
		return nil, err
	}
	if !d.IsNegotiating() {
		return nil, shared.NewConflictError(
			fmt.Sprintf("deal %s has no round in progress", d.ID()), string(d.Status()))
	}

	messages, err := h.store.Messages().ListByDeal(ctx, d.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	vendorMsgs := filterByRole(messages, deal.RoleVendor)
	if len(vendorMsgs) == 0 {
		return nil, shared.NewNotFoundError("vendor message", d.ID().String())
	}
	pending := vendorMsgs[len(vendorMsgs)-1]
	round := d.Round() + 1
	if pending.Round != round {
		return nil, shared.NewConflictError(
			fmt.Sprintf("vendor message round %d does not match in-progress round %d", pending.Round, round),
			string(d.Status()))
	}

	cfg := h.effectiveConfig(ctx, d)

	acc := pending.Accumulated
	if acc == nil {
		acc = h.recomputeAccumulation(vendorMsgs)
	}

	var prevVendorOffer *deal.Offer
	if len(vendorMsgs) > 1 {
		if prevAcc := vendorMsgs[len(vendorMsgs)-2].Accumulated; prevAcc != nil {
			prevVendorOffer = &prevAcc.Offer
		}
	}

	newState := negotiation.UpdateState(
		d.State(), prevVendorOffer, &acc.Offer, pending.Content, d.LatestCounter(), round, cfg)

	var signals *negotiation.BehavioralSignals
	var strategy *negotiation.AdaptiveStrategy
	if cfg.AdaptiveEnabled() {
		s := negotiation.ComputeSignals(
			newState.ParameterHistories[deal.FieldTotalPrice],
			pmCounterPrices(messages),
			pending.Content)
		signals = &s
		st := negotiation.ComputeAdaptiveStrategy(s, cfg, round)
		strategy = &st
	}

	decision := h.engine.Decide(negotiation.DecisionInput{
		Config:   cfg,
		Offer:    acc,
		Round:    round,
		State:    newState,
		Signals:  signals,
		Strategy: strategy,
	})
	newState.RecordUtilityScore(decision.UtilityScore)

	bundle := h.maybeGenerateMeso(ctx, d, cfg, acc, decision, round, newState)

	text, source := h.generator.Generate(ctx, d, decision, chatHistory(messages))

	pmMsg, err := deal.NewPMMessage(d.ID(), round, text, decision, h.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := d.CompleteRound(round, decision, newState); err != nil {
		return nil, err
	}

	if err := h.commitRound(ctx, d, pmMsg, bundle); err != nil {
		return nil, err
	}

	if h.cache != nil {
		h.cache.Invalidate(d.ID())
	}

	logger.Log("info", "round completed", map[string]interface{}{
		"deal_id": d.ID().String(),
		"round":   round,
		"action":  string(decision.Action),
		"utility": decision.UtilityScore,
		"source":  string(source),
		"status":  string(d.Status()),
	})

	h.fireHooks(ctx, d, decision, round)

	return &GeneratePMResponseResponse{Message: pmMsg, Decision: decision, Deal: d}, nil
}

// effectiveConfig returns the deal's stored config, rebuilding it from
// the requisition when the persisted blob is unusable. A rebuild marks
// the deal degraded; the round still completes.
func (h *GeneratePMResponseHandler) effectiveConfig(ctx context.Context, d *deal.Deal) *deal.NegotiationConfig {
	cfg := d.Config()
	if cfg != nil && cfg.Validate() == nil {
		return cfg
	}

	common.LoggerFromContext(ctx).Log("warn", "stored config unusable, rebuilding from requisition", map[string]interface{}{
		"deal_id": d.ID().String(),
	})
	var req *deal.Requisition
	if found, err := h.store.Requisitions().FindByID(ctx, d.RequisitionID()); err == nil {
		req = found
	}
	rebuilt := h.builder.BuildFromRequisition(req)
	d.MarkDegraded()
	if err := d.ReplaceConfig(rebuilt); err != nil {
		// Rebuilt defaults always validate; keep going with them regardless
		return rebuilt
	}
	return rebuilt
}

// recomputeAccumulation replays accumulation across the vendor messages
// when the pending message predates accumulation persistence
func (h *GeneratePMResponseHandler) recomputeAccumulation(vendorMsgs []*deal.Message) *deal.AccumulatedOffer {
	var acc *deal.AccumulatedOffer
	for _, m := range vendorMsgs {
		acc = negotiation.Accumulate(acc, m.Offer, m.ID)
	}
	return acc
}

// maybeGenerateMeso attaches a MESO bundle and/or stall prompt to a
// COUNTER decision
func (h *GeneratePMResponseHandler) maybeGenerateMeso(
	ctx context.Context,
	d *deal.Deal,
	cfg *deal.NegotiationConfig,
	acc *deal.AccumulatedOffer,
	decision *deal.Decision,
	round int,
	state *deal.NegotiationState,
) *deal.MesoRound {
	if decision.Action != deal.ActionCounter {
		return nil
	}

	stallPrompt, stalled := negotiation.DetectStall(state.ParameterHistories)

	prior, err := h.store.MesoRounds().ListByDeal(ctx, d.ID())
	if err != nil {
		common.LoggerFromContext(ctx).Log("warn", "failed to load meso history", map[string]interface{}{
			"deal_id": d.ID().String(),
			"error":   err.Error(),
		})
		return nil
	}

	var bundle *deal.MesoRound
	if negotiation.ShouldUseMeso(round, cfg.SoftMaxRounds(), len(prior)) {
		var prev *deal.MesoRound
		if len(prior) > 0 {
			prev = prior[len(prior)-1]
		}
		bundle = h.meso.Generate(cfg, &acc.Offer, decision.UtilityScore, d.ID(), round, prev, state)
	}

	switch {
	case bundle != nil:
		decision.Explainability.Meso = &deal.MesoExplain{
			Options:       bundle.Options,
			TargetUtility: bundle.TargetUtility,
			Variance:      bundle.Variance,
			IsFinal:       bundle.IsFinal(),
			StallPrompt:   stallPrompt,
		}
	case stalled:
		decision.Explainability.Meso = &deal.MesoExplain{StallPrompt: stallPrompt}
	}
	return bundle
}

// commitRound persists the PM message, deal update and MESO bundle in
// one transaction, retrying transient store failures with jittered
// backoff
func (h *GeneratePMResponseHandler) commitRound(ctx context.Context, d *deal.Deal, pmMsg *deal.Message, bundle *deal.MesoRound) error {
	var err error
	for attempt := 1; attempt <= storeRetryAttempts; attempt++ {
		err = h.store.Transaction(ctx, func(tx deal.Store) error {
			if err := tx.Messages().Add(ctx, pmMsg); err != nil {
				return fmt.Errorf("failed to save pm message: %w", err)
			}
			if err := tx.Deals().Save(ctx, d); err != nil {
				return fmt.Errorf("failed to save deal: %w", err)
			}
			if bundle != nil {
				if err := tx.MesoRounds().Add(ctx, bundle); err != nil {
					return fmt.Errorf("failed to save meso round: %w", err)
				}
			}
			return nil
		})
		if err == nil {
			return nil
		}
		if !shared.IsTransient(err) || attempt == storeRetryAttempts {
			return err
		}
		backoff := time.Duration(attempt) * storeRetryBase
		jitter := time.Duration(rand.Int63n(int64(storeRetryBase)))
		h.clock.Sleep(backoff + jitter)
	}
	return err
}

// fireHooks schedules the off-path side effects for the completed round
func (h *GeneratePMResponseHandler) fireHooks(ctx context.Context, d *deal.Deal, decision *deal.Decision, round int) {
	if h.hooks == nil {
		return
	}

	if !d.IsTerminal() {
		if h.notifier != nil {
			h.hooks.Submit(ctx, services.HookTask{
				Name: "continued-negotiation-notification",
				Run: func(hookCtx context.Context) error {
					result := h.notifier.SendContinuedNegotiation(hookCtx, d, round)
					if !result.Success {
						return fmt.Errorf("notification failed: %s", result.Error)
					}
					return nil
				},
			})
		}
		return
	}

	if h.warmer != nil {
		h.warmer.Cancel(d.ID())
	}

	h.hooks.Submit(ctx, services.HookTask{
		Name: "vendor-profile-update",
		Run: func(hookCtx context.Context) error {
			return h.updateVendorProfile(hookCtx, d, decision)
		},
	})

	if h.notifier != nil {
		h.hooks.Submit(ctx, services.HookTask{
			Name: "terminal-status-notification",
			Run: func(hookCtx context.Context) error {
				result := h.notifier.SendPmTerminalStatus(hookCtx, d, decision)
				if !result.Success {
					return fmt.Errorf("notification failed: %s", result.Error)
				}
				return nil
			},
		})
	}
}

// updateVendorProfile folds the deal outcome into the vendor's history
func (h *GeneratePMResponseHandler) updateVendorProfile(ctx context.Context, d *deal.Deal, decision *deal.Decision) error {
	profile, err := h.store.VendorProfiles().FindByVendor(ctx, d.VendorID())
	if err != nil {
		return fmt.Errorf("failed to load vendor profile: %w", err)
	}
	if profile == nil {
		profile = &deal.VendorProfile{VendorID: d.VendorID(), Behavior: deal.BehaviorUnknown}
	}

	accepted := d.Status() == deal.StatusAccepted
	var finalDiscount float64
	var finalTerms string
	if offer := d.LatestVendorOffer(); accepted && offer != nil && offer.TotalPrice != nil {
		target := d.Config().Price.Target
		if target > 0 {
			finalDiscount = (*offer.TotalPrice - target) / target
		}
		finalTerms = offer.PaymentTerms
	}
	profile.RecordOutcome(accepted, finalDiscount, finalTerms)

	if err := h.store.VendorProfiles().Upsert(ctx, profile); err != nil {
		return fmt.Errorf("failed to upsert vendor profile: %w", err)
	}
	return nil
}

func filterByRole(messages []*deal.Message, role deal.Role) []*deal.Message {
	var out []*deal.Message
	for _, m := range messages {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

// pmCounterPrices collects the buyer's counter series, oldest first
func pmCounterPrices(messages []*deal.Message) []float64 {
	var out []float64
	for _, m := range messages {
		if m.Role != deal.RoleAccordo || m.Decision == nil {
			continue
		}
		if c := m.Decision.CounterOffer; c != nil && c.TotalPrice != nil {
			out = append(out, *c.TotalPrice)
		}
	}
	return out
}

// chatHistory converts the transcript into LLM chat turns
func chatHistory(messages []*deal.Message) []common.ChatMessage {
	var out []common.ChatMessage
	for _, m := range messages {
		role := "user"
		if m.Role == deal.RoleAccordo {
			role = "assistant"
		}
		out = append(out, common.ChatMessage{Role: role, Content: m.Content})
	}
	return out
}
