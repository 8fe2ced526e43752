package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/commands"
	"github.com/yug-shah0106/accordo-engine/internal/domain/deal"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// NewMessageCommand creates the message command with subcommands
func NewMessageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Feed vendor messages through the negotiation pipeline",
	}

	cmd.AddCommand(newMessageSendCommand())
	cmd.AddCommand(newMessageSelectCommand())

	return cmd
}

func newMessageSendCommand() *cobra.Command {
	var (
		dealID string
		text   string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Process a vendor message and print the engine's response",
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

			response, err := app.Mediator.Send(context.Background(), &commands.ProcessVendorMessageCommand{
				DealID:  id,
				Content: text,
			})
			if err != nil {
				return err
			}
			result := response.(*commands.ProcessVendorMessageResponse)

			decision := result.Decision
			fmt.Printf("Round %d: %s (utility %.3f)\n",
				result.PMMessage.Round, decision.Action, decision.UtilityScore)
			fmt.Printf("Reason: %s\n", decision.Explainability.Reason)
			if decision.CounterOffer != nil {
				fmt.Printf("Counter: %s\n", decision.CounterOffer.Format())
			}
			if meso := decision.Explainability.Meso; meso != nil {
				for _, opt := range meso.Options {
					fmt.Printf("Option %s [%s]: %s\n", opt.ID, opt.Label, opt.Offer.Format())
				}
				if meso.StallPrompt != "" {
					fmt.Printf("Prompt: %s\n", meso.StallPrompt)
				}
			}
			fmt.Printf("\n%s\n", result.PMMessage.Content)
			if result.Deal.Status() != deal.StatusNegotiating {
				fmt.Printf("\nDeal is now %s\n", result.Deal.Status())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dealID, "deal", "", "Deal id (required)")
	cmd.Flags().StringVar(&text, "text", "", "Vendor message text (required)")
	_ = cmd.MarkFlagRequired("deal")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newMessageSelectCommand() *cobra.Command {
	var (
		dealID   string
		mesoID   string
		optionID string
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Record the vendor's pick from a bundle round",
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
			meso, err := shared.ParseID(mesoID)
			if err != nil {
				return fmt.Errorf("invalid --meso: %w", err)
			}

			response, err := app.Mediator.Send(context.Background(), &commands.SelectMesoOptionCommand{
				DealID:   id,
				MesoID:   meso,
				OptionID: optionID,
			})
			if err != nil {
				return err
			}
			selected := response.(*commands.SelectMesoOptionResponse)
			fmt.Printf("Recorded selection %s [%s]: %s\n",
				selected.Option.ID, selected.Option.Label, selected.Option.Offer.Format())
			return nil
		},
	}

	cmd.Flags().StringVar(&dealID, "deal", "", "Deal id (required)")
	cmd.Flags().StringVar(&mesoID, "meso", "", "Meso round id (required)")
	cmd.Flags().StringVar(&optionID, "option", "", "Option id, e.g. A (required)")
	_ = cmd.MarkFlagRequired("deal")
	_ = cmd.MarkFlagRequired("meso")
	_ = cmd.MarkFlagRequired("option")
	return cmd
}
