package repository

import (
	"github.com/shopdeckhq/shopdeck/app/models"
	"gorm.io/gorm"
)

// releaseRepository implements the ReleaseRepository interface
type releaseRepository struct {
	db *gorm.DB
}

// NewReleaseRepository creates a new update-release repository instance
func NewReleaseRepository(db *gorm.DB) ReleaseRepository {
	return &releaseRepository{db: db}
}

// Create creates a new release row
func (r *releaseRepository) Create(release *models.UpdateRelease) error {
	return r.db.Create(release).Error
}

// GetByPublicID retrieves a release by its public identifier
func (r *releaseRepository) GetByPublicID(publicID string) (*models.UpdateRelease, error) {
	var release models.UpdateRelease
	err := r.db.Where("public_id = ?", publicID).First(&release).Error
	if err != nil {
		return nil, err
	}
	return &release, nil
}

// GetByShopID returns all releases of a shop, newest first
func (r *releaseRepository) GetByShopID(shopID uint) ([]models.UpdateRelease, error) {
	var releases []models.UpdateRelease
	err := r.db.Where("shop_id = ?", shopID).Order("created_at DESC").Find(&releases).Error
	return releases, err
}

// LatestPublished returns the newest published release for a shop and channel
func (r *releaseRepository) LatestPublished(shopID uint, channel string) (*models.UpdateRelease, error) {
	var release models.UpdateRelease
	err := r.db.
		Where("shop_id = ? AND channel = ? AND status = ?", shopID, channel, models.ReleaseStatusPublished).
		Order("published_at DESC").
		First(&release).Error
	if err != nil {
		return nil, err
	}
	return &release, nil
}

// Update saves changes to an existing release
func (r *releaseRepository) Update(release *models.UpdateRelease) error {
	return r.db.Save(release).Error
}
