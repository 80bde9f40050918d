package repository

import (
	"time"

	"github.com/shopdeckhq/shopdeck/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ShopRepository defines the interface for shop-related database operations
type ShopRepository interface {
	Create(shop *models.Shop) error
	GetByID(id uint) (*models.Shop, error)
	GetByPublicID(publicID string) (*models.Shop, error)
	GetByUserID(userID uint) ([]models.Shop, error)
	Update(shop *models.Shop) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Shop, error)
	Count() (int64, error)
	UpdateBilling(publicID, status string, periodEnd *time.Time, customerRef, subscriptionRef string) error
	GetByBillingCustomerRef(ref string) (*models.Shop, error)
	IsMember(userID uint, shopPublicID string) (bool, error)
	AddMember(member *models.ShopMember) error
	RemoveMember(shopID, userID uint) error
	ListMembers(shopID uint) ([]models.ShopMember, error)
}

// DeviceRepository defines the interface for device-related database operations
type DeviceRepository interface {
	Create(device *models.Device) error
	GetByPublicID(publicID string) (*models.Device, error)
	GetByTokenHash(hash string) (*models.Device, error)
	GetByShopID(shopID uint) ([]models.Device, error)
	Update(device *models.Device) error
	CountByShopID(shopID uint) (int64, error)
}

// ReleaseRepository defines the interface for update-release database operations
type ReleaseRepository interface {
	Create(release *models.UpdateRelease) error
	GetByPublicID(publicID string) (*models.UpdateRelease, error)
	GetByShopID(shopID uint) ([]models.UpdateRelease, error)
	LatestPublished(shopID uint, channel string) (*models.UpdateRelease, error)
	Update(release *models.UpdateRelease) error
}

// AuditRepository defines the interface for audit-log database operations
type AuditRepository interface {
	Append(entry *models.AuditLog) error
	GetByShopID(shopID uint, offset, limit int) ([]models.AuditLog, error)
	CountByShopID(shopID uint) (int64, error)
}

// WebhookEventRepository persists provider webhook deliveries idempotently
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}
