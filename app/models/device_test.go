package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeviceIssuesOneTimeToken(t *testing.T) {
	d, raw, err := NewDevice(7, "Front counter", "android")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(raw, "sdk_"))
	assert.Equal(t, HashDeviceToken(raw), d.TokenHash)
	assert.Equal(t, DeviceStatusActive, d.Status)
	assert.NotEmpty(t, d.PublicID)

	// Tokens are unique per enrollment.
	_, raw2, err := NewDevice(7, "Back office", "android")
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
}

func TestDeviceTouchAndRevoke(t *testing.T) {
	d, _, err := NewDevice(1, "Kiosk", "linux")
	require.NoError(t, err)

	assert.Nil(t, d.LastSeenAt)
	d.Touch()
	assert.NotNil(t, d.LastSeenAt)

	assert.False(t, d.IsRevoked())
	d.Status = DeviceStatusRevoked
	assert.True(t, d.IsRevoked())
}

func TestShopCreation(t *testing.T) {
	s, err := CreateShop("Corner Store", 3)
	require.NoError(t, err)
	assert.Equal(t, BillingStatusNone, s.BillingStatus)
	assert.NotEmpty(t, s.PublicID)

	_, err = CreateShop("x", 3)
	assert.Error(t, err, "name below minimum length")
}

func TestReleaseLifecycle(t *testing.T) {
	r := NewUpdateRelease(5, "2.4.0", "")
	assert.Equal(t, ReleaseChannelStable, r.Channel)
	assert.Equal(t, ReleaseStatusDraft, r.Status)
	assert.Nil(t, r.PublishedAt)

	r.Publish()
	assert.Equal(t, ReleaseStatusPublished, r.Status)
	assert.NotNil(t, r.PublishedAt)
}
