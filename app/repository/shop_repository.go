package repository

import (
	"time"

	"github.com/shopdeckhq/shopdeck/app/models"
	"gorm.io/gorm"
)

// shopRepository implements the ShopRepository interface
type shopRepository struct {
	db *gorm.DB
}

// NewShopRepository creates a new shop repository instance
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

// Create creates a new shop in the database
func (r *shopRepository) Create(shop *models.Shop) error {
	return r.db.Create(shop).Error
}

// GetByID retrieves a shop by its internal ID
func (r *shopRepository) GetByID(id uint) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.First(&shop, id).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// GetByPublicID retrieves a shop by its public identifier
func (r *shopRepository) GetByPublicID(publicID string) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.Where("public_id = ?", publicID).First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// GetByUserID returns all shops the user owns or belongs to
func (r *shopRepository) GetByUserID(userID uint) ([]models.Shop, error) {
	var shops []models.Shop
	err := r.db.
		Joins("LEFT JOIN shop_members ON shop_members.shop_id = shops.id").
		Where("shops.owner_user_id = ? OR shop_members.user_id = ?", userID, userID).
		Group("shops.id").
		Find(&shops).Error
	return shops, err
}

// Update saves changes to an existing shop
func (r *shopRepository) Update(shop *models.Shop) error {
	return r.db.Save(shop).Error
}

// Delete soft-deletes a shop by ID
func (r *shopRepository) Delete(id uint) error {
	return r.db.Delete(&models.Shop{}, id).Error
}

// List returns a page of shops
func (r *shopRepository) List(offset, limit int) ([]models.Shop, error) {
	var shops []models.Shop
	err := r.db.Offset(offset).Limit(limit).Order("id").Find(&shops).Error
	return shops, err
}

// Count returns the total number of shops
func (r *shopRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Shop{}).Count(&count).Error
	return count, err
}

// UpdateBilling writes the billing columns synced from the payment provider.
// This is the only write path into the billing record.
func (r *shopRepository) UpdateBilling(publicID, status string, periodEnd *time.Time, customerRef, subscriptionRef string) error {
	updates := map[string]interface{}{
		"billing_status":             status,
		"billing_current_period_end": periodEnd,
	}
	if customerRef != "" {
		updates["billing_customer_ref"] = customerRef
	}
	if subscriptionRef != "" {
		updates["billing_subscription_ref"] = subscriptionRef
	}
	return r.db.Model(&models.Shop{}).Where("public_id = ?", publicID).Updates(updates).Error
}

// GetByBillingCustomerRef resolves a provider customer reference to a shop
func (r *shopRepository) GetByBillingCustomerRef(ref string) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.Where("billing_customer_ref = ?", ref).First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// IsMember reports whether the user owns or belongs to the shop identified by
// its public ID. Unknown shops simply answer false, so callers cannot probe
// for shop existence through this check.
func (r *shopRepository) IsMember(userID uint, shopPublicID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Shop{}).
		Joins("LEFT JOIN shop_members ON shop_members.shop_id = shops.id").
		Where("shops.public_id = ?", shopPublicID).
		Where("shops.owner_user_id = ? OR shop_members.user_id = ?", userID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddMember links a user to a shop
func (r *shopRepository) AddMember(member *models.ShopMember) error {
	return r.db.Create(member).Error
}

// RemoveMember unlinks a user from a shop
func (r *shopRepository) RemoveMember(shopID, userID uint) error {
	return r.db.Where("shop_id = ? AND user_id = ?", shopID, userID).Delete(&models.ShopMember{}).Error
}

// ListMembers returns all membership rows for a shop
func (r *shopRepository) ListMembers(shopID uint) ([]models.ShopMember, error) {
	var members []models.ShopMember
	err := r.db.Where("shop_id = ?", shopID).Find(&members).Error
	return members, err
}
