package updatestorage

import (
	"errors"
	"fmt"

	"github.com/shopdeckhq/shopdeck/internal/pkg/env"
)

// Config holds object storage configuration for update packages
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads S3 configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("UPDATE_STORAGE_ENABLED", "false") == "true",
	}

	// Validate required fields if update storage is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when update storage is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when update storage is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when update storage is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if update storage is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ObjectKey generates a standardized S3 object key for an update package
func (c *Config) ObjectKey(shopPublicID, releasePublicID, version string) string {
	return fmt.Sprintf("updates/%s/%s-%s.pkg", shopPublicID, releasePublicID, version)
}
