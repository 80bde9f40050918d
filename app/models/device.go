package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DeviceStatusActive  = "active"
	DeviceStatusRevoked = "revoked"
)

// Device is a registered point-of-sale or kiosk terminal belonging to a shop.
// It authenticates against the API with an opaque token; only the token hash
// is stored.
type Device struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	PublicID   string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"public_id"`
	ShopID     uint           `gorm:"not null;index" json:"shop_id"`
	Name       string         `gorm:"type:varchar(150);not null" json:"name"`
	Platform   string         `gorm:"type:varchar(50)" json:"platform"`
	AppVersion string         `gorm:"type:varchar(50)" json:"app_version"`
	TokenHash  string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	Status     string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	LastSeenAt *time.Time     `gorm:"type:timestamp;default:null" json:"last_seen_at,omitempty"`
	EnrolledAt time.Time      `gorm:"autoCreateTime" json:"enrolled_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// NewDevice creates a device and returns it together with the one-time raw
// token the terminal stores locally.
func NewDevice(shopID uint, name, platform string) (*Device, string, error) {
	raw, err := generateDeviceToken()
	if err != nil {
		return nil, "", err
	}
	d := &Device{
		PublicID:  uuid.NewString(),
		ShopID:    shopID,
		Name:      name,
		Platform:  platform,
		TokenHash: HashDeviceToken(raw),
		Status:    DeviceStatusActive,
	}
	return d, raw, nil
}

// HashDeviceToken returns the storage hash for a raw device token.
func HashDeviceToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func generateDeviceToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "sdk_" + base64.RawURLEncoding.EncodeToString(b), nil
}

// Touch records a heartbeat from the device.
func (d *Device) Touch() {
	now := time.Now()
	d.LastSeenAt = &now
}

// IsRevoked reports whether the device may no longer call the API.
func (d *Device) IsRevoked() bool {
	return d.Status == DeviceStatusRevoked
}
