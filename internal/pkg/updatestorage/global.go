package updatestorage

import (
	"sync"

	"github.com/gofiber/fiber/v2/log"
)

var (
	defaultClient *Client
	initOnce      sync.Once
)

// Initialize sets up the shared storage client from the environment. Safe to
// call more than once; later calls are no-ops.
func Initialize() {
	initOnce.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			log.Errorf("[UpdateStorage] invalid configuration: %v", err)
			return
		}
		if !cfg.IsEnabled() {
			log.Info("[UpdateStorage] disabled, update uploads unavailable")
			return
		}
		client, err := NewClient(cfg)
		if err != nil {
			log.Errorf("[UpdateStorage] initialization failed: %v", err)
			return
		}
		defaultClient = client
	})
}

// GetClient returns the shared storage client, or nil when storage is
// disabled or failed to initialize.
func GetClient() *Client {
	return defaultClient
}

// ObjectKeyFor builds the object key for a release using the shared config.
func (c *Client) ObjectKeyFor(shopPublicID, releasePublicID, version string) string {
	return c.config.ObjectKey(shopPublicID, releasePublicID, version)
}
