package deal

import (
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

// MesoLabel names the trade-off axis an option favors
type MesoLabel string

const (
	MesoLabelPriceFavoring MesoLabel = "price-favoring"
	MesoLabelTermsFavoring MesoLabel = "terms-favoring"
	MesoLabelBalanced      MesoLabel = "balanced"
)

// MesoType distinguishes how a MESO round was generated
type MesoType string

const (
	// MesoTypeInitial is the first MESO bundle in a deal
	MesoTypeInitial MesoType = "initial"
	// MesoTypeDynamic perturbs away from the previously selected option
	MesoTypeDynamic MesoType = "dynamic"
	// MesoTypeFinal tightens variance and aims to close the deal
	MesoTypeFinal MesoType = "final"
)

// MesoOption is one equi-utility bundle offered to the vendor
type MesoOption struct {
	ID               string    `json:"id"`
	Label            MesoLabel `json:"label"`
	Offer            Offer     `json:"offer"`
	Utility          float64   `json:"utility"`
	DeltaFromCurrent float64   `json:"delta_from_current"`
}

// MesoRound is one round's bundle of simultaneous equivalent offers.
// Invariant: every option's utility lies within
// [TargetUtility-Variance, TargetUtility+Variance].
type MesoRound struct {
	ID                  shared.ID          `json:"id"`
	DealID              shared.ID          `json:"deal_id"`
	Round               int                `json:"round"`
	Type                MesoType           `json:"type"`
	Options             []MesoOption       `json:"options"`
	TargetUtility       float64            `json:"target_utility"`
	Variance            float64            `json:"variance"`
	SelectedOptionID    string             `json:"selected_option_id,omitempty"`
	InferredPreferences map[string]float64 `json:"inferred_preferences,omitempty"`
}

// OptionByID returns the option with the given id, or nil
func (m *MesoRound) OptionByID(id string) *MesoOption {
	for i := range m.Options {
		if m.Options[i].ID == id {
			return &m.Options[i]
		}
	}
	return nil
}

// IsFinal reports whether this bundle was generated to close the deal
func (m *MesoRound) IsFinal() bool {
	return m.Type == MesoTypeFinal
}
