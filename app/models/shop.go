package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Billing statuses as synced from the payment provider. The column is a plain
// string on purpose; unrecognized provider values are tolerated and treated
// as unknown by the gate.
const (
	BillingStatusTrialing = "trialing"
	BillingStatusActive   = "active"
	BillingStatusPastDue  = "past_due"
	BillingStatusCanceled = "canceled"
	BillingStatusNone     = "none"
)

// Shop is a tenant unit: the scope of billing, membership, devices, updates
// and audit history. The billing_* columns are written only by the webhook
// sync; the rest of the application reads them.
type Shop struct {
	ID                      uint           `gorm:"primaryKey" json:"id"`
	PublicID                string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"public_id"`
	Name                    string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	OwnerUserID             uint           `gorm:"not null;index" json:"owner_user_id"`
	Timezone                string         `gorm:"type:varchar(64);default:'UTC'" json:"timezone"`
	BillingStatus           string         `gorm:"type:varchar(32);not null;default:'none';index" json:"billing_status"`
	BillingCurrentPeriodEnd *time.Time     `gorm:"type:timestamp;default:null" json:"billing_current_period_end,omitempty"`
	BillingCustomerRef      string         `gorm:"type:varchar(191);default:null" json:"billing_customer_ref,omitempty"`
	BillingSubscriptionRef  string         `gorm:"type:varchar(191);default:null" json:"billing_subscription_ref,omitempty"`
	CreatedAt               time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt               gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Shop) Validate() error {
	v := validator.New()

	return v.Struct(s)
}

// CreateShop builds a new shop with a fresh public identifier.
func CreateShop(name string, ownerUserID uint) (*Shop, error) {
	s := &Shop{
		PublicID:      uuid.NewString(),
		Name:          name,
		OwnerUserID:   ownerUserID,
		BillingStatus: BillingStatusNone,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Shop member roles. Owner and manager may administer the shop; staff is
// read-mostly.
const (
	MemberRoleOwner   = "owner"
	MemberRoleManager = "manager"
	MemberRoleStaff   = "staff"
)

// ShopMember links a user to a shop with a role.
type ShopMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ShopID    uint      `gorm:"not null;index:ux_shop_members_shop_user,unique,priority:1" json:"shop_id"`
	UserID    uint      `gorm:"not null;index:ux_shop_members_shop_user,unique,priority:2" json:"user_id"`
	Role      string    `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
