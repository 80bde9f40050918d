package repository

import (
	"time"

	"github.com/shopdeckhq/shopdeck/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// auditRepository implements the AuditRepository interface
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository instance
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Append writes one immutable audit row
func (r *auditRepository) Append(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// GetByShopID returns a page of audit rows for a shop, newest first
func (r *auditRepository) GetByShopID(shopID uint, offset, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.Where("shop_id = ?", shopID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	return entries, err
}

// CountByShopID returns the total number of audit rows for a shop
func (r *auditRepository) CountByShopID(shopID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.AuditLog{}).Where("shop_id = ?", shopID).Count(&count).Error
	return count, err
}

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// CreateIfNotExists inserts the event unless the (provider, event id) pair was
// already recorded. Returns whether a new row was created plus the stored row.
func (r *webhookEventRepository) CreateIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// MarkProcessed records the processing outcome of a stored event
func (r *webhookEventRepository) MarkProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
