package persistence

import (
	"time"
)

// DealModel represents the deals table. Config and state are stored as
// JSON blobs; the offer snapshots keep the latest positions queryable
// without replaying messages.
type DealModel struct {
	ID            string `gorm:"column:id;primaryKey;not null"`
	Title         string `gorm:"column:title;not null"`
	Mode          string `gorm:"column:mode;not null"`
	Status        string `gorm:"column:status;not null;index"`
	Round         int    `gorm:"column:round;not null;default:0"`
	Priority      string `gorm:"column:priority"`
	BuyerID       string `gorm:"column:buyer_id;not null;index"`
	VendorID      string `gorm:"column:vendor_id;not null;index"`
	RequisitionID string `gorm:"column:requisition_id"`
	ContractID    string `gorm:"column:contract_id"`

	ConfigJSON            string   `gorm:"column:config;type:text"`
	StateJSON             string   `gorm:"column:state;type:text"`
	LatestVendorOfferJSON string   `gorm:"column:latest_vendor_offer;type:text"`
	LatestCounterJSON     string   `gorm:"column:latest_counter;type:text"`
	LatestUtility         *float64 `gorm:"column:latest_utility"`
	LatestAction          string   `gorm:"column:latest_action"`
	Degraded              bool     `gorm:"column:degraded;not null;default:false"`

	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	LastMessageAt *time.Time `gorm:"column:last_message_at"`
	ArchivedAt    *time.Time `gorm:"column:archived_at"`
	DeletedAt     *time.Time `gorm:"column:deleted_at"`
}

func (DealModel) TableName() string {
	return "deals"
}

// MessageModel represents the messages table. The composite unique index
// enforces at most one message per (deal, round, role).
type MessageModel struct {
	ID     string     `gorm:"column:id;primaryKey;not null"`
	DealID string     `gorm:"column:deal_id;not null;index;uniqueIndex:idx_messages_deal_round_role"`
	Deal   *DealModel `gorm:"foreignKey:DealID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Round  int        `gorm:"column:round;not null;uniqueIndex:idx_messages_deal_round_role"`
	Role   string     `gorm:"column:role;not null;uniqueIndex:idx_messages_deal_round_role"`

	Content         string `gorm:"column:content;type:text;not null"`
	OfferJSON       string `gorm:"column:offer;type:text"`
	AccumulatedJSON string `gorm:"column:accumulated;type:text"`
	DecisionJSON    string `gorm:"column:decision;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (MessageModel) TableName() string {
	return "messages"
}

// MesoRoundModel represents the meso_rounds table
type MesoRoundModel struct {
	ID     string     `gorm:"column:id;primaryKey;not null"`
	DealID string     `gorm:"column:deal_id;not null;index"`
	Deal   *DealModel `gorm:"foreignKey:DealID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Round  int        `gorm:"column:round;not null"`
	Type   string     `gorm:"column:type;not null"`

	OptionsJSON             string  `gorm:"column:options;type:text;not null"`
	TargetUtility           float64 `gorm:"column:target_utility;not null"`
	Variance                float64 `gorm:"column:variance;not null"`
	SelectedOptionID        string  `gorm:"column:selected_option_id"`
	InferredPreferencesJSON string  `gorm:"column:inferred_preferences;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (MesoRoundModel) TableName() string {
	return "meso_rounds"
}

// RequisitionModel represents the requisitions table
type RequisitionModel struct {
	ID           string `gorm:"column:id;primaryKey;not null"`
	Currency     string `gorm:"column:currency;not null"`
	ProductsJSON string `gorm:"column:products;type:text;not null"`
}

func (RequisitionModel) TableName() string {
	return "requisitions"
}

// VendorProfileModel represents the vendor_profiles table
type VendorProfileModel struct {
	VendorID          string  `gorm:"column:vendor_id;primaryKey;not null"`
	DealCount         int     `gorm:"column:deal_count;not null;default:0"`
	AcceptedCount     int     `gorm:"column:accepted_count;not null;default:0"`
	MeanFinalDiscount float64 `gorm:"column:mean_final_discount;not null;default:0"`
	TypicalFinalTerms string  `gorm:"column:typical_final_terms"`
	Behavior          string  `gorm:"column:behavior;not null;default:'unknown'"`
}

func (VendorProfileModel) TableName() string {
	return "vendor_profiles"
}

// NegotiationLogModel represents the negotiation_logs table
type NegotiationLogModel struct {
	ID           int       `gorm:"column:id;primaryKey;autoIncrement"`
	DealID       string    `gorm:"column:deal_id;not null;index"`
	Timestamp    time.Time `gorm:"column:timestamp;not null"`
	Level        string    `gorm:"column:level;not null;default:'INFO'"`
	Message      string    `gorm:"column:message;type:text;not null"`
	MetadataJSON string    `gorm:"column:metadata;type:text"`
}

func (NegotiationLogModel) TableName() string {
	return "negotiation_logs"
}

// AllModels lists every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&DealModel{},
		&MessageModel{},
		&MesoRoundModel{},
		&RequisitionModel{},
		&VendorProfileModel{},
		&NegotiationLogModel{},
	}
}
