package steps

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"
	"gorm.io/gorm"

	"github.com/yug-shah0106/accordo-engine/internal/adapters/persistence"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/commands"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/services"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
	"github.com/yug-shah0106/accordo-engine/internal/infrastructure/database"
)

// negotiationPipelineContext drives the full two-phase pipeline against
// an in-memory store with the template response generator (no LLM).
type negotiationPipelineContext struct {
	db       *gorm.DB
	store    *persistence.GormStore
	locks    *services.DealLockTable
	pipeline *commands.ProcessVendorMessageHandler
	selector *commands.SelectMesoOptionHandler
	clock    *shared.MockClock

	dealID   shared.ID
	response *commands.ProcessVendorMessageResponse
	err      error
}

func (c *negotiationPipelineContext) reset() error {
	if c.db != nil {
		_ = database.Close(c.db)
	}

	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("failed to create test database: %w", err)
	}
	c.db = db
	c.clock = shared.NewMockClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	c.store = persistence.NewGormStore(db, c.clock)
	c.locks = services.NewDealLockTable()

	generator := services.NewResponseGenerator(nil, 0)
	phase1 := commands.NewSaveVendorMessageHandler(c.store, c.locks, nil, c.clock)
	phase2 := commands.NewGeneratePMResponseHandler(c.store, c.locks, generator, nil, nil, nil, nil, c.clock)
	c.pipeline = commands.NewProcessVendorMessageHandler(c.locks, phase1, phase2)
	c.selector = commands.NewSelectMesoOptionHandler(c.store, c.locks)

	c.dealID = shared.ID{}
	c.response = nil
	c.err = nil
	return nil
}

func referenceStance() *deal.NegotiationConfig {
	return &deal.NegotiationConfig{
		Price: deal.PriceParameter{
			Weight:         0.6,
			Anchor:         850,
			Target:         1000,
			MaxAcceptable:  1250,
			ConcessionStep: 50,
		},
		Terms: deal.TermsParameter{
			Weight:  0.4,
			Options: []string{"Net 30", "Net 60", "Net 90"},
			Utilities: map[string]float64{
				"Net 30": 0.2,
				"Net 60": 0.6,
				"Net 90": 1.0,
			},
		},
		AcceptThreshold:   0.70,
		EscalateThreshold: 0.50,
		WalkawayThreshold: 0.30,
		MaxRounds:         6,
		Priority:          deal.PriorityMedium,
	}
}

// Given steps

func (c *negotiationPipelineContext) anActiveDealWithTheBuyingStance(table *godog.Table) error {
	cfg := referenceStance()
	if len(table.Rows) > 1 {
		row := table.Rows[1]
		cfg.Price.Target = cellFloat(table, row, "target", cfg.Price.Target)
		cfg.Price.Anchor = cellFloat(table, row, "anchor", cfg.Price.Anchor)
		cfg.Price.MaxAcceptable = cellFloat(table, row, "max_acceptable", cfg.Price.MaxAcceptable)
		cfg.Price.ConcessionStep = cellFloat(table, row, "concession_step", cfg.Price.ConcessionStep)
		cfg.MaxRounds = int(cellFloat(table, row, "max_rounds", float64(cfg.MaxRounds)))
	}

	d, err := deal.NewDeal("Annual hardware order", deal.ModeConversation, deal.PriorityMedium,
		shared.NewID(), shared.NewID(), shared.NewID(), shared.ID{}, cfg, c.clock)
	if err != nil {
		return err
	}
	if err := c.store.Deals().Save(context.Background(), d); err != nil {
		return err
	}
	c.dealID = d.ID()
	return nil
}

// When steps

func (c *negotiationPipelineContext) theVendorWrites(text string) error {
	resp, err := c.pipeline.Handle(context.Background(), &commands.ProcessVendorMessageCommand{
		DealID:  c.dealID,
		Content: text,
	})
	c.err = err
	if err != nil {
		c.response = nil
		return nil
	}
	c.response = resp.(*commands.ProcessVendorMessageResponse)
	return nil
}

func (c *negotiationPipelineContext) theVendorWritesTimes(text string, times int) error {
	for i := 0; i < times; i++ {
		if err := c.theVendorWrites(text); err != nil {
			return err
		}
		if c.err != nil {
			return fmt.Errorf("round %d failed: %v", i+1, c.err)
		}
	}
	return nil
}

func (c *negotiationPipelineContext) theVendorSelectsTheBundleOption(label string) error {
	rounds, err := c.store.MesoRounds().ListByDeal(context.Background(), c.dealID)
	if err != nil {
		return err
	}
	if len(rounds) == 0 {
		return fmt.Errorf("no bundle rounds exist for the deal")
	}
	latest := rounds[len(rounds)-1]

	var optionID string
	for _, opt := range latest.Options {
		if string(opt.Label) == label {
			optionID = opt.ID
			break
		}
	}
	if optionID == "" {
		return fmt.Errorf("no option labeled %q in the latest bundle", label)
	}

	_, err = c.selector.Handle(context.Background(), &commands.SelectMesoOptionCommand{
		DealID:   c.dealID,
		MesoID:   latest.ID,
		OptionID: optionID,
	})
	return err
}

// Then steps

func (c *negotiationPipelineContext) theEngineActionShouldBe(action string) error {
	if c.err != nil {
		return fmt.Errorf("pipeline failed: %v", c.err)
	}
	if c.response == nil || c.response.Decision == nil {
		return fmt.Errorf("no decision in response")
	}
	if string(c.response.Decision.Action) != action {
		return fmt.Errorf("expected action %s but got %s (reason: %s)",
			action, c.response.Decision.Action, c.response.Decision.Explainability.Reason)
	}
	return nil
}

func (c *negotiationPipelineContext) theDecidedUtilityShouldBeAtLeast(threshold float64) error {
	if c.response == nil || c.response.Decision == nil {
		return fmt.Errorf("no decision in response")
	}
	if c.response.Decision.UtilityScore < threshold {
		return fmt.Errorf("expected utility >= %.2f but got %.3f", threshold, c.response.Decision.UtilityScore)
	}
	return nil
}

func (c *negotiationPipelineContext) theDecidedUtilityShouldBeAbout(expected float64) error {
	if c.response == nil || c.response.Decision == nil {
		return fmt.Errorf("no decision in response")
	}
	if math.Abs(c.response.Decision.UtilityScore-expected) > 0.01 {
		return fmt.Errorf("expected utility about %.2f but got %.3f", expected, c.response.Decision.UtilityScore)
	}
	return nil
}

func (c *negotiationPipelineContext) theDealStatusShouldBe(status string) error {
	d, err := c.store.Deals().FindByID(context.Background(), c.dealID)
	if err != nil {
		return err
	}
	if string(d.Status()) != status {
		return fmt.Errorf("expected status %s but got %s", status, d.Status())
	}
	return nil
}

func (c *negotiationPipelineContext) theDealRoundShouldBe(round int) error {
	d, err := c.store.Deals().FindByID(context.Background(), c.dealID)
	if err != nil {
		return err
	}
	if d.Round() != round {
		return fmt.Errorf("expected round %d but got %d", round, d.Round())
	}
	return nil
}

func (c *negotiationPipelineContext) theResponseShouldIncludeBundleOptions(count int) error {
	meso := c.lastMesoExplain()
	if meso == nil {
		return fmt.Errorf("no bundle attached to the decision")
	}
	if len(meso.Options) != count {
		return fmt.Errorf("expected %d bundle options but got %d", count, len(meso.Options))
	}
	return nil
}

func (c *negotiationPipelineContext) everyBundleOptionShouldSitWithinTheBand() error {
	meso := c.lastMesoExplain()
	if meso == nil {
		return fmt.Errorf("no bundle attached to the decision")
	}
	lo := meso.TargetUtility - meso.Variance
	hi := meso.TargetUtility + meso.Variance
	for _, opt := range meso.Options {
		if opt.Utility < lo-1e-9 || opt.Utility > hi+1e-9 {
			return fmt.Errorf("option %s utility %.3f outside [%.3f, %.3f]", opt.ID, opt.Utility, lo, hi)
		}
	}
	return nil
}

func (c *negotiationPipelineContext) theVendorEmphasisShouldBeWithConfidenceAtLeast(emphasis string, confidence float64) error {
	d, err := c.store.Deals().FindByID(context.Background(), c.dealID)
	if err != nil {
		return err
	}
	state := d.State()
	if state == nil {
		return fmt.Errorf("deal has no negotiation state")
	}
	if string(state.VendorEmphasis) != emphasis {
		return fmt.Errorf("expected emphasis %s but got %s", emphasis, state.VendorEmphasis)
	}
	if state.EmphasisConfidence < confidence {
		return fmt.Errorf("expected confidence >= %.2f but got %.3f", confidence, state.EmphasisConfidence)
	}
	return nil
}

func (c *negotiationPipelineContext) theResponseShouldCarryAFinalOfferPrompt() error {
	meso := c.lastMesoExplain()
	if meso == nil || meso.StallPrompt == "" {
		return fmt.Errorf("no final-offer prompt attached to the decision")
	}
	return nil
}

func (c *negotiationPipelineContext) lastMesoExplain() *deal.MesoExplain {
	if c.response == nil || c.response.Decision == nil {
		return nil
	}
	return c.response.Decision.Explainability.Meso
}

// cellFloat reads a numeric cell by column name, falling back to the
// default when the column is absent or unparsable
func cellFloat(table *godog.Table, row *messages.PickleTableRow, column string, fallback float64) float64 {
	for i, header := range table.Rows[0].Cells {
		if header.Value != column || i >= len(row.Cells) {
			continue
		}
		if v, err := strconv.ParseFloat(row.Cells[i].Value, 64); err == nil {
			return v
		}
	}
	return fallback
}

// InitializeNegotiationPipelineScenario registers the pipeline steps
func InitializeNegotiationPipelineScenario(ctx *godog.ScenarioContext) {
	pipelineCtx := &negotiationPipelineContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, pipelineCtx.reset()
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if pipelineCtx.db != nil {
			_ = database.Close(pipelineCtx.db)
			pipelineCtx.db = nil
		}
		return ctx, nil
	})

	ctx.Step(`^an active deal with the buying stance:$`, pipelineCtx.anActiveDealWithTheBuyingStance)
	ctx.Step(`^the vendor writes "([^"]*)"$`, pipelineCtx.theVendorWrites)
	ctx.Step(`^the vendor writes "([^"]*)" (\d+) times$`, pipelineCtx.theVendorWritesTimes)
	ctx.Step(`^the vendor selects the "([^"]*)" bundle option$`, pipelineCtx.theVendorSelectsTheBundleOption)
	ctx.Step(`^the engine action should be "([^"]*)"$`, pipelineCtx.theEngineActionShouldBe)
	ctx.Step(`^the decided utility should be at least (\d+\.\d+)$`, pipelineCtx.theDecidedUtilityShouldBeAtLeast)
	ctx.Step(`^the decided utility should be about (\d+\.\d+)$`, pipelineCtx.theDecidedUtilityShouldBeAbout)
	ctx.Step(`^the deal status should be "([^"]*)"$`, pipelineCtx.theDealStatusShouldBe)
	ctx.Step(`^the deal round should be (\d+)$`, pipelineCtx.theDealRoundShouldBe)
	ctx.Step(`^the response should include (\d+) equivalent bundle options$`, pipelineCtx.theResponseShouldIncludeBundleOptions)
	ctx.Step(`^every bundle option should sit within the bundle's utility band$`, pipelineCtx.everyBundleOptionShouldSitWithinTheBand)
	ctx.Step(`^the vendor emphasis should be "([^"]*)" with confidence at least (\d+\.\d+)$`, pipelineCtx.theVendorEmphasisShouldBeWithConfidenceAtLeast)
	ctx.Step(`^the response should carry a final-offer prompt$`, pipelineCtx.theResponseShouldCarryAFinalOfferPrompt)
}
