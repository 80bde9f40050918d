package repository

import (
	"github.com/shopdeckhq/shopdeck/app/models"
	"gorm.io/gorm"
)

// deviceRepository implements the DeviceRepository interface
type deviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository creates a new device repository instance
func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

// Create creates a new device row
func (r *deviceRepository) Create(device *models.Device) error {
	return r.db.Create(device).Error
}

// GetByPublicID retrieves a device by its public identifier
func (r *deviceRepository) GetByPublicID(publicID string) (*models.Device, error) {
	var device models.Device
	err := r.db.Where("public_id = ?", publicID).First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// GetByTokenHash resolves a device token hash
func (r *deviceRepository) GetByTokenHash(hash string) (*models.Device, error) {
	var device models.Device
	err := r.db.Where("token_hash = ?", hash).First(&device).Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// GetByShopID returns all devices of a shop
func (r *deviceRepository) GetByShopID(shopID uint) ([]models.Device, error) {
	var devices []models.Device
	err := r.db.Where("shop_id = ?", shopID).Order("id").Find(&devices).Error
	return devices, err
}

// Update saves changes to an existing device
func (r *deviceRepository) Update(device *models.Device) error {
	return r.db.Save(device).Error
}

// CountByShopID returns the number of devices registered to a shop
func (r *deviceRepository) CountByShopID(shopID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Device{}).Where("shop_id = ?", shopID).Count(&count).Error
	return count, err
}
