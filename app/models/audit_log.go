package models

import "time"

// Audit actions recorded for gated mutations.
const (
	AuditShopCreated      = "shop.created"
	AuditShopUpdated      = "shop.updated"
	AuditShopDeleted      = "shop.deleted"
	AuditDeviceEnrolled   = "device.enrolled"
	AuditDeviceRevoked    = "device.revoked"
	AuditReleaseCreated   = "release.created"
	AuditReleasePublished = "release.published"
	AuditReleaseWithdrawn = "release.withdrawn"
	AuditBillingLinked    = "billing.linked"
	AuditMemberAdded      = "member.added"
	AuditMemberRemoved    = "member.removed"
)

// AuditLog is one immutable row per mutation on shop-scoped data. Rows are
// append-only; there is no update path.
type AuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ShopID      uint      `gorm:"not null;index:idx_audit_logs_shop_created,priority:1" json:"shop_id"`
	ActorUserID uint      `gorm:"not null;index" json:"actor_user_id"`
	Action      string    `gorm:"type:varchar(64);not null;index" json:"action"`
	TargetType  string    `gorm:"type:varchar(32)" json:"target_type"`
	TargetID    string    `gorm:"type:varchar(64)" json:"target_id"`
	Detail      string    `gorm:"type:text" json:"detail"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_audit_logs_shop_created,priority:2" json:"created_at"`
}
