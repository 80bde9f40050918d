package repository

import (
	"sync"

	"gorm.io/gorm"

	"github.com/shopdeckhq/shopdeck/internal/pkg/database"
)

// Repositories bundles all repository instances
type Repositories struct {
	User    UserRepository
	Shop    ShopRepository
	Device  DeviceRepository
	Release ReleaseRepository
	Audit   AuditRepository
	Webhook WebhookEventRepository
}

// NewRepositories creates all repositories over one DB handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Shop:    NewShopRepository(db),
		Device:  NewDeviceRepository(db),
		Release: NewReleaseRepository(db),
		Audit:   NewAuditRepository(db),
		Webhook: NewWebhookEventRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetShopRepository returns the shop repository instance
func (f *Factory) GetShopRepository() ShopRepository {
	return f.GetRepositories().Shop
}

// GetDeviceRepository returns the device repository instance
func (f *Factory) GetDeviceRepository() DeviceRepository {
	return f.GetRepositories().Device
}

// GetReleaseRepository returns the update-release repository instance
func (f *Factory) GetReleaseRepository() ReleaseRepository {
	return f.GetRepositories().Release
}

// GetAuditRepository returns the audit repository instance
func (f *Factory) GetAuditRepository() AuditRepository {
	return f.GetRepositories().Audit
}

// GetWebhookEventRepository returns the webhook event repository instance
func (f *Factory) GetWebhookEventRepository() WebhookEventRepository {
	return f.GetRepositories().Webhook
}

var (
	globalFactory     *Factory
	globalFactoryOnce sync.Once
)

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	globalFactoryOnce.Do(func() {
		globalFactory = NewFactory(database.GetDB())
	})
	return globalFactory
}
