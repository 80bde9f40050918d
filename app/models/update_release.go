package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReleaseChannelStable = "stable"
	ReleaseChannelBeta   = "beta"

	ReleaseStatusDraft     = "draft"
	ReleaseStatusPublished = "published"
	ReleaseStatusWithdrawn = "withdrawn"
)

// UpdateRelease is one distributable software package for a shop's devices.
// The package binary lives in object storage under ObjectKey; publishing a
// release makes it visible to the device polling endpoint.
type UpdateRelease struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PublicID    string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"public_id"`
	ShopID      uint           `gorm:"not null;index:idx_update_releases_shop_channel,priority:1" json:"shop_id"`
	Version     string         `gorm:"type:varchar(50);not null" json:"version"`
	Channel     string         `gorm:"type:varchar(20);not null;default:'stable';index:idx_update_releases_shop_channel,priority:2" json:"channel"`
	ObjectKey   string         `gorm:"type:varchar(255);not null" json:"-"`
	SizeBytes   int64          `gorm:"not null;default:0" json:"size_bytes"`
	ChecksumSHA string         `gorm:"type:varchar(64)" json:"checksum_sha256"`
	Notes       string         `gorm:"type:text" json:"notes"`
	Status      string         `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	PublishedAt *time.Time     `gorm:"type:timestamp;default:null" json:"published_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// NewUpdateRelease creates a draft release for a shop.
func NewUpdateRelease(shopID uint, version, channel string) *UpdateRelease {
	if channel == "" {
		channel = ReleaseChannelStable
	}
	return &UpdateRelease{
		PublicID: uuid.NewString(),
		ShopID:   shopID,
		Version:  version,
		Channel:  channel,
		Status:   ReleaseStatusDraft,
	}
}

// Publish marks the release as live for device polling.
func (r *UpdateRelease) Publish() {
	now := time.Now()
	r.Status = ReleaseStatusPublished
	r.PublishedAt = &now
}
