package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/motomart/config"
	"github.com/shashiranjanraj/motomart/pkg/storage"
)

func TestResolveUnknownDiskReturnsError(t *testing.T) {
	_, err := storage.Resolve("ceph")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `disk "ceph" is not configured`)
}

func TestUsePanicsOnUnknownDisk(t *testing.T) {
	assert.Panics(t, func() { storage.Use("ceph") })
}

// STORAGE_DISK can name the s3 disk while the disk itself never boots
// (Connect downgrades a bucketless s3 config to a warning). Default has to
// report that as an error, never a panic, so the invoice archive step can
// degrade at runtime.
func TestDefaultReportsUnbootedConfiguredDisk(t *testing.T) {
	config.Set("STORAGE_DISK", "s3")
	t.Cleanup(func() {
		config.Set("STORAGE_DISK", "local")
		storage.Connect()
	})
	storage.Connect()

	var err error
	assert.NotPanics(t, func() { _, err = storage.Default() })
	require.Error(t, err)
	assert.Contains(t, err.Error(), `disk "s3" is not configured`)
}

func TestDefaultFindsLocalDisk(t *testing.T) {
	config.Set("STORAGE_DISK", "local")
	storage.Connect()

	d, err := storage.Default()
	require.NoError(t, err)
	assert.NotNil(t, d)
}
