// Package storage provides pluggable file storage (local filesystem or any
// S3-compatible object store). The application uses it to archive rendered
// invoices when INVOICE_ARCHIVE is enabled.
package storage

import (
	"fmt"
	"sync"

	"github.com/shashiranjanraj/motomart/config"
	"github.com/shashiranjanraj/motomart/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk string
)

// Connect boots the storage manager.
// Call once at application startup.
func Connect() {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDisk = config.StorageDefault()

	// Always boot local disk.
	disks["local"] = newLocalDisk()

	// Boot S3 disk only if a bucket is configured.
	if config.StorageS3Bucket() != "" {
		d, err := newS3Disk()
		if err != nil {
			logger.Warn("storage/s3 disabled", "error", err)
		} else {
			disks["s3"] = d
		}
	}
}

// Use returns the named disk ("local" or "s3"). It panics on an unknown
// name; boot-time wiring should fail loudly. Background callers that must
// not take the process down use Resolve or Default instead.
func Use(name string) Disk {
	d, err := Resolve(name)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Resolve returns the named disk, or an error when it never booted (an s3
// disk without a bucket, a name that is neither "local" nor "s3").
func Resolve(name string) (Disk, error) {
	managerMu.RLock()
	d, ok := disks[name]
	managerMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the disk selected by STORAGE_DISK without panicking. The
// configured disk can be absent at runtime even though Connect succeeded,
// because Connect degrades a misconfigured s3 disk to a warning.
func Default() (Disk, error) {
	managerMu.RLock()
	name := defaultDisk
	managerMu.RUnlock()
	if name == "" {
		name = config.StorageDefault()
	}
	return Resolve(name)
}

// RegisterDisk lets tests plug in a custom Disk implementation.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}

func defaultD() Disk { return Use(defaultDisk) }

// Put writes content to path on the default disk.
func Put(path string, content []byte) error { return defaultD().Put(path, content) }

// Get returns file content from the default disk.
func Get(path string) ([]byte, error) { return defaultD().Get(path) }

// Exists reports whether path exists on the default disk.
func Exists(path string) bool { return defaultD().Exists(path) }

// Delete removes path from the default disk.
func Delete(path string) error { return defaultD().Delete(path) }

// URL returns the public URL for path on the default disk.
func URL(path string) string { return defaultD().URL(path) }
