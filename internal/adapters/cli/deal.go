package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/commands"
	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/queries"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/negotiation"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// NewDealCommand creates the deal command with subcommands
func NewDealCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Manage negotiation deals",
	}

	cmd.AddCommand(newDealCreateCommand())
	cmd.AddCommand(newDealShowCommand())
	cmd.AddCommand(newDealResumeCommand())
	cmd.AddCommand(newDealArchiveCommand())
	cmd.AddCommand(newDealTranscriptCommand())

	return cmd
}

func newDealCreateCommand() *cobra.Command {
	var (
		title        string
		mode         string
		priority     string
		buyerID      string
		vendorID     string
		productsPath string
		currency     string
		maxRounds    int
		adaptive     bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a deal from a requisition",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()

			buyer, err := shared.ParseID(buyerID)
			if err != nil {
				return fmt.Errorf("invalid --buyer: %w", err)
			}
			vendor, err := shared.ParseID(vendorID)
			if err != nil {
				return fmt.Errorf("invalid --vendor: %w", err)
			}

			raw, err := os.ReadFile(productsPath)
			if err != nil {
				return fmt.Errorf("failed to read products file: %w", err)
			}
			var products []deal.RequisitionProduct
			if err := json.Unmarshal(raw, &products); err != nil {
				return fmt.Errorf("failed to parse products file: %w", err)
			}

			wizard := &negotiation.WizardPayload{
				Priority:        deal.Priority(priority),
				MaxRounds:       maxRounds,
				AdaptiveEnabled: adaptive,
			}

			response, err := app.Mediator.Send(context.Background(), &commands.CreateDealCommand{
				Title:    title,
				Mode:     deal.Mode(mode),
				Priority: deal.Priority(priority),
				BuyerID:  buyer,
				VendorID: vendor,
				Requisition: &deal.Requisition{
					ID:       shared.NewID(),
					Currency: deal.Currency(currency),
					Products: products,
				},
				Wizard: wizard,
			})
			if err != nil {
				return err
			}

			created := response.(*commands.CreateDealResponse)
			fmt.Printf("Created deal %s (%s)\n", created.Deal.ID(), created.Deal.Status())
			printStance(created.Deal)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Deal title (required)")
	cmd.Flags().StringVar(&mode, "mode", string(deal.ModeConversation), "Engine mode: INSIGHTS or CONVERSATION")
	cmd.Flags().StringVar(&priority, "priority", string(deal.PriorityMedium), "Priority: HIGH, MEDIUM or LOW")
	cmd.Flags().StringVar(&buyerID, "buyer", "", "Buyer id (required)")
	cmd.Flags().StringVar(&vendorID, "vendor", "", "Vendor id (required)")
	cmd.Flags().StringVar(&productsPath, "products", "", "Path to products JSON file (required)")
	cmd.Flags().StringVar(&currency, "currency", string(deal.CurrencyUSD), "Requisition currency")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 0, "Override the round limit")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "Enable the behavioral strategy layer")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("buyer")
	_ = cmd.MarkFlagRequired("vendor")
	_ = cmd.MarkFlagRequired("products")

	return cmd
}

func newDealShowCommand() *cobra.Command {
	var dealID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a deal's current posture",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()

			id, err := shared.ParseID(dealID)
			if err != nil {
				return fmt.Errorf("invalid --deal: %w", err)
			}

			response, err := app.Mediator.Send(context.Background(), &queries.GetDealSummaryQuery{DealID: id})
			if err != nil {
				return err
			}
			summary := response.(*queries.GetDealSummaryResponse)

			d := summary.Deal
			fmt.Printf("Deal %s: %s\n", d.ID(), d.Title())
			fmt.Printf("Status: %s after %d round(s)\n", d.Status(), d.Round())
			if summary.CurrentUtility != nil {
				fmt.Printf("Utility: %.3f\n", *summary.CurrentUtility)
			}
			if summary.CurrentOffer != nil && !summary.CurrentOffer.IsEmpty() {
				fmt.Printf("Vendor position: %s\n", summary.CurrentOffer.Format())
			}
			if summary.Signals != nil {
				fmt.Printf("Momentum: %.2f  Convergence: %.3f  Stalling: %v\n",
					summary.Signals.Momentum, summary.Signals.ConvergenceRate, summary.Signals.IsStalling)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dealID, "deal", "", "Deal id (required)")
	_ = cmd.MarkFlagRequired("deal")
	return cmd
}

func newDealResumeCommand() *cobra.Command {
	var dealID string

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Return an escalated deal to negotiation",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()

			id, err := shared.ParseID(dealID)
			if err != nil {
				return fmt.Errorf("invalid --deal: %w", err)
			}

			response, err := app.Mediator.Send(context.Background(), &commands.ResumeDealCommand{DealID: id})
			if err != nil {
				return err
			}
			resumed := response.(*commands.ResumeDealResponse)
			fmt.Printf("Deal %s resumed at round %d\n", resumed.Deal.ID(), resumed.Deal.Round())
			return nil
		},
	}

	cmd.Flags().StringVar(&dealID, "deal", "", "Deal id (required)")
	_ = cmd.MarkFlagRequired("deal")
	return cmd
}

func newDealArchiveCommand() *cobra.Command {
	var (
		dealID     string
		softDelete bool
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Archive (or soft-delete) a deal",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()

			id, err := shared.ParseID(dealID)
			if err != nil {
				return fmt.Errorf("invalid --deal: %w", err)
			}

			_, err = app.Mediator.Send(context.Background(), &commands.ArchiveDealCommand{
				DealID: id,
				Delete: softDelete,
			})
			if err != nil {
				return err
			}
			if softDelete {
				fmt.Printf("Deal %s soft-deleted\n", dealID)
			} else {
				fmt.Printf("Deal %s archived\n", dealID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dealID, "deal", "", "Deal id (required)")
	cmd.Flags().BoolVar(&softDelete, "delete", false, "Soft-delete instead of archive")
	_ = cmd.MarkFlagRequired("deal")
	return cmd
}

func newDealTranscriptCommand() *cobra.Command {
	var dealID string

	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Print a deal's full message transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}
			defer app.Close()

			id, err := shared.ParseID(dealID)
			if err != nil {
				return fmt.Errorf("invalid --deal: %w", err)
			}

			response, err := app.Mediator.Send(context.Background(), &queries.GetTranscriptQuery{DealID: id})
			if err != nil {
				return err
			}
			transcript := response.(*queries.GetTranscriptResponse)

			for _, m := range transcript.Messages {
				fmt.Printf("[round %d] %s: %s\n", m.Round, m.Role, m.Content)
				if m.Decision != nil {
					fmt.Printf("           -> %s (utility %.3f): %s\n",
						m.Decision.Action, m.Decision.UtilityScore, m.Decision.Explainability.Reason)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dealID, "deal", "", "Deal id (required)")
	_ = cmd.MarkFlagRequired("deal")
	return cmd
}

func printStance(d *deal.Deal) {
	cfg := d.Config()
	if cfg == nil {
		return
	}
	fmt.Printf("Stance: anchor $%.2f, target $%.2f, max $%.2f, rounds %d\n",
		cfg.Price.Anchor, cfg.Price.Target, cfg.Price.MaxAcceptable, cfg.MaxRounds)
}
