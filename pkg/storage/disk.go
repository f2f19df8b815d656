package storage

// Disk is a storage backend. Paths use forward slashes and are relative to
// the disk root (or bucket).
type Disk interface {
	Put(path string, content []byte) error
	Get(path string) ([]byte, error)
	Exists(path string) bool
	Delete(path string) error
	URL(path string) string
}
