package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RewardCategory string

const (
	RewardCategoryDigital       RewardCategory = "digital"
	RewardCategoryPhysical      RewardCategory = "physical"
	RewardCategoryExperience    RewardCategory = "experience"
	RewardCategoryEducation     RewardCategory = "education"
	RewardCategoryEntertainment RewardCategory = "entertainment"
	RewardCategoryCharity       RewardCategory = "charity"
)

// Reward is a marketplace catalog entry redeemable with FORE tokens.
// StockQuantity and MaxPerUser are nil for unlimited.
type Reward struct {
	ID          string         `gorm:"primaryKey;type:uuid;not null" json:"id"`
	Title       string         `gorm:"size:200;uniqueIndex;not null" json:"title"`
	Slug        string         `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Category    RewardCategory `gorm:"type:varchar(20);index:idx_reward_cat_active;not null" json:"category"`

	ForeCost decimal.Decimal `gorm:"type:numeric(12,2);not null;index" json:"fore_cost"`
	ImageURL string          `gorm:"type:text" json:"image_url"`

	IsActive      bool   `gorm:"not null;default:true;index:idx_reward_cat_active" json:"is_active"`
	StockQuantity *int64 `json:"stock_quantity,omitempty"`
	MaxPerUser    *int64 `json:"max_per_user,omitempty"`

	AvailableFrom  *time.Time `json:"available_from,omitempty"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`

	DeliveryInfo     string `gorm:"type:text" json:"delivery_info"`
	RequiresShipping bool   `gorm:"not null;default:false" json:"requires_shipping"`

	TotalRedeemed int64 `gorm:"not null;default:0" json:"total_redeemed"`

	Timestamps
}

// IsAvailable reports whether the reward can be redeemed at the given time.
func (r *Reward) IsAvailable(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.AvailableFrom != nil && now.Before(*r.AvailableFrom) {
		return false
	}
	if r.AvailableUntil != nil && now.After(*r.AvailableUntil) {
		return false
	}
	return true
}

type RedemptionStatus string

const (
	RedemptionPending    RedemptionStatus = "pending"
	RedemptionProcessing RedemptionStatus = "processing"
	RedemptionShipped    RedemptionStatus = "shipped"
	RedemptionDelivered  RedemptionStatus = "delivered"
	RedemptionCompleted  RedemptionStatus = "completed"
	RedemptionCancelled  RedemptionStatus = "cancelled"
)

// RewardRedemption is one claim against the catalog. ForeCost snapshots the
// price at redemption time; later catalog changes never touch past claims.
type RewardRedemption struct {
	ID       string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID   string `gorm:"type:uuid;index:idx_redemption_user_time;not null" json:"user_id"`
	RewardID string `gorm:"type:uuid;index;not null" json:"reward_id"`

	Reward *Reward `gorm:"foreignKey:RewardID" json:"reward,omitempty"`

	ForeCost decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"fore_cost"`
	Status   RedemptionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	DeliveryAddress string `gorm:"type:text" json:"delivery_address"`
	DeliveryPhone   string `gorm:"size:20" json:"delivery_phone"`
	TrackingCode    string `gorm:"size:100" json:"tracking_code"`

	// Short human-relayable code used for manual fulfillment lookup.
	RedemptionCode string `gorm:"size:50;uniqueIndex;not null" json:"redemption_code"`

	RedeemedAt  time.Time  `gorm:"autoCreateTime;index:idx_redemption_user_time,sort:desc" json:"redeemed_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	AdminNotes string `gorm:"type:text" json:"admin_notes,omitempty"`
}

// InitialRewards is the seed marketplace catalog.
var InitialRewards = []Reward{
	{
		Title:        "Personalized Digital Certificate",
		Description:  "Digital certificate with your name and academic progress",
		Category:     RewardCategoryDigital,
		ForeCost:     decimal.NewFromInt(100),
		DeliveryInfo: "Sent by email as a PDF within 24-48 hours.",
	},
	{
		Title:         "Extra Premium Class",
		Description:   "A 45-minute premium class with a native tutor",
		Category:      RewardCategoryEducation,
		ForeCost:      decimal.NewFromInt(250),
		StockQuantity: int64Ptr(20),
		DeliveryInfo:  "Session scheduled within 7 days.",
	},
	{
		Title:        "Advanced Pronunciation Guide",
		Description:  "Exclusive digital material with interactive exercises",
		Category:     RewardCategoryDigital,
		ForeCost:     decimal.NewFromInt(75),
		DeliveryInfo: "Immediate access after redemption.",
	},
	{
		Title:            "English Grammar Book",
		Description:      "\"English Grammar in Use\" shipped to your address",
		Category:         RewardCategoryPhysical,
		ForeCost:         decimal.NewFromInt(500),
		StockQuantity:    int64Ptr(50),
		RequiresShipping: true,
		DeliveryInfo:     "Free shipping, 5-10 business days.",
	},
	{
		Title:            "Platform Mug",
		Description:      "Official ceramic mug with the platform logo",
		Category:         RewardCategoryPhysical,
		ForeCost:         decimal.NewFromInt(200),
		StockQuantity:    int64Ptr(100),
		RequiresShipping: true,
		DeliveryInfo:     "Free shipping, 3-7 business days.",
	},
	{
		Title:        "Expert Webinar Access",
		Description:  "Access to an exclusive webinar on advanced study techniques",
		Category:     RewardCategoryExperience,
		ForeCost:     decimal.NewFromInt(600),
		MaxPerUser:   int64Ptr(1),
		DeliveryInfo: "Invitation link sent before the event.",
	},
	{
		Title:         "Streaming Subscription, 1 Month",
		Description:   "Code for one month of a streaming subscription",
		Category:      RewardCategoryEntertainment,
		ForeCost:      decimal.NewFromInt(600),
		StockQuantity: int64Ptr(15),
		DeliveryInfo:  "Code sent by email within 24 hours.",
	},
	{
		Title:        "Rural Education Donation",
		Description:  "A $10 USD donation for education in rural areas",
		Category:     RewardCategoryCharity,
		ForeCost:     decimal.NewFromInt(1000),
		DeliveryInfo: "Donation receipt sent by email.",
	},
}
