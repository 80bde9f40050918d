package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/shopdeckhq/shopdeck/app/models"
	"github.com/shopdeckhq/shopdeck/app/repository"
	"github.com/shopdeckhq/shopdeck/internal/pkg/audit"
	"github.com/shopdeckhq/shopdeck/internal/pkg/updatestorage"
	"github.com/shopdeckhq/shopdeck/internal/pkg/usercontext"
)

// maxPackageSize caps update uploads at 512 MB.
const maxPackageSize = 512 * 1024 * 1024

// HandleReleaseUpload accepts a multipart package upload and creates a draft
// release. The binary goes straight to object storage.
func HandleReleaseUpload(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	storage := updatestorage.GetClient()
	if storage == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "storage_unavailable",
			"message": "update storage is not configured",
		})
	}

	version := c.FormValue("version")
	if version == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request",
			"message": "version is required",
		})
	}

	fileHeader, err := c.FormFile("package")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request",
			"message": "package file is required",
		})
	}
	if fileHeader.Size > maxPackageSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error":   "package_too_large",
			"message": fmt.Sprintf("package exceeds %d bytes", maxPackageSize),
		})
	}

	release := models.NewUpdateRelease(shop.ID, version, c.FormValue("channel"))
	release.Notes = c.FormValue("notes")
	release.ObjectKey = storage.ObjectKeyFor(shop.PublicID, release.PublicID, release.Version)
	release.SizeBytes = fileHeader.Size

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": "could not read upload",
		})
	}
	defer file.Close()

	// Checksum while uploading so the file is read only once.
	hasher := sha256.New()
	body := io.TeeReader(file, hasher)

	if err := storage.Upload(c.UserContext(), release.ObjectKey, body, fileHeader.Size, "application/octet-stream"); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "storage_error",
			"message": "could not store package",
		})
	}
	release.ChecksumSHA = hex.EncodeToString(hasher.Sum(nil))

	if err := repository.GetGlobalFactory().GetReleaseRepository().Create(release); err != nil {
		// Best effort: do not leave an orphaned object behind.
		_ = storage.Delete(c.UserContext(), release.ObjectKey)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": "could not save release",
		})
	}

	audit.Record(shop.ID, usercontext.GetUserID(c), models.AuditReleaseCreated, "release", release.PublicID,
		fiber.Map{"version": release.Version, "channel": release.Channel, "size_bytes": release.SizeBytes})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok": true,
		"release": fiber.Map{
			"public_id":       release.PublicID,
			"version":         release.Version,
			"channel":         release.Channel,
			"status":          release.Status,
			"checksum_sha256": release.ChecksumSHA,
		},
	})
}

// HandleReleasePublish flips a draft release live for device polling.
func HandleReleasePublish(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	repos := repository.GetGlobalFactory().GetReleaseRepository()
	release, err := repos.GetByPublicID(c.Params("releaseID"))
	if err != nil || release.ShopID != shop.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "not_found",
			"message": "release not found",
		})
	}

	if release.Status == models.ReleaseStatusWithdrawn {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "release_withdrawn",
			"message": "a withdrawn release cannot be published again",
		})
	}

	release.Publish()
	if err := repos.Update(release); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": "could not publish release",
		})
	}

	audit.Record(shop.ID, usercontext.GetUserID(c), models.AuditReleasePublished, "release", release.PublicID,
		fiber.Map{"version": release.Version, "channel": release.Channel})

	return c.JSON(fiber.Map{"ok": true, "published_at": formatTimePtr(release.PublishedAt)})
}

// HandleReleaseWithdraw pulls a release out of device polling.
func HandleReleaseWithdraw(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	repos := repository.GetGlobalFactory().GetReleaseRepository()
	release, err := repos.GetByPublicID(c.Params("releaseID"))
	if err != nil || release.ShopID != shop.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "not_found",
			"message": "release not found",
		})
	}

	release.Status = models.ReleaseStatusWithdrawn
	if err := repos.Update(release); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": "could not withdraw release",
		})
	}

	audit.Record(shop.ID, usercontext.GetUserID(c), models.AuditReleaseWithdrawn, "release", release.PublicID,
		fiber.Map{"version": release.Version, "channel": release.Channel})

	return c.JSON(fiber.Map{"ok": true})
}
