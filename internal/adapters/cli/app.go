package cli

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yug-shah0106/accordo-engine/internal/adapters/llm"
	"github.com/yug-shah0106/accordo-engine/internal/adapters/notify"
	"github.com/yug-shah0106/accordo-engine/internal/adapters/persistence"
	"github.com/yug-shah0106/accordo-engine/internal/adapters/report"
	"github.com/yug-shah0106/accordo-engine/internal/application/common"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/commands"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/queries"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/services"
	"github.com/yug-shah0106/accordo-engine/internal/domain/negotiation"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
	"github.com/yug-shah0106/accordo-engine/internal/infrastructure/config"
	"github.com/yug-shah0106/accordo-engine/internal/infrastructure/database"
)

// App wires the full engine: store, services, handlers, mediator
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Store    *persistence.GormStore
	Mediator common.Mediator
	Logs     *persistence.GormNegotiationLogRepository

	hooks  *services.HookPool
	warmer *services.SuggestionWarmer
}

// NewApp builds the application container from config
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	clock := shared.NewRealClock()
	store := persistence.NewGormStore(db, clock)
	logs := persistence.NewGormNegotiationLogRepository(db, clock)

	var llmClient common.LLMClient
	if cfg.LLM.Enabled {
		llmClient = llm.NewChatClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	}

	locks := services.NewDealLockTable()
	cache := services.NewSuggestionCache(cfg.Engine.SuggestionTTL, cfg.Engine.SuggestionCapacity, clock)
	generator := services.NewResponseGenerator(llmClient, cfg.LLM.Timeout)
	warmer := services.NewSuggestionWarmer(cache, negotiation.NewEngine(), generator)
	hooks := services.NewHookPool(cfg.Engine.HookWorkers, cfg.Engine.HookQueue)
	notifier := notify.NewLogNotifier()
	reporter := report.NewTextReporter()

	phase1 := commands.NewSaveVendorMessageHandler(store, locks, warmer, clock)
	phase2 := commands.NewGeneratePMResponseHandler(store, locks, generator, cache, warmer, hooks, notifier, clock)

	m := common.NewMediator()
	registrations := []error{
		common.RegisterHandler[*commands.CreateDealCommand](m,
			commands.NewCreateDealHandler(store, negotiation.NewConfigBuilder(), hooks, notifier, clock)),
		common.RegisterHandler[*commands.SaveVendorMessageCommand](m, phase1),
		common.RegisterHandler[*commands.GeneratePMResponseCommand](m, phase2),
		common.RegisterHandler[*commands.ProcessVendorMessageCommand](m,
			commands.NewProcessVendorMessageHandler(locks, phase1, phase2)),
		common.RegisterHandler[*commands.ResumeDealCommand](m, commands.NewResumeDealHandler(store, locks)),
		common.RegisterHandler[*commands.SelectMesoOptionCommand](m, commands.NewSelectMesoOptionHandler(store, locks)),
		common.RegisterHandler[*commands.ArchiveDealCommand](m, commands.NewArchiveDealHandler(store, locks)),
		common.RegisterHandler[*queries.GetTranscriptQuery](m, queries.NewGetTranscriptHandler(store)),
		common.RegisterHandler[*queries.GetDealSummaryQuery](m, queries.NewGetDealSummaryHandler(store, reporter)),
	}
	for _, err := range registrations {
		if err != nil {
			return nil, fmt.Errorf("failed to register handler: %w", err)
		}
	}

	return &App{
		Config:   cfg,
		DB:       db,
		Store:    store,
		Mediator: m,
		Logs:     logs,
		hooks:    hooks,
		warmer:   warmer,
	}, nil
}

// Close drains the hook pool and closes the database
func (a *App) Close() error {
	a.hooks.Shutdown()
	return database.Close(a.DB)
}
