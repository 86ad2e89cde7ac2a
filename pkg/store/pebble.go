package store

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"parley/pkg/logger"

	"github.com/cockroachdb/pebble"
)

var (
	db     *pebble.DB
	dbPath string
)

const snapshotPrefix = "snapshot:"

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", zap.String("path", path))
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", zap.String("path", path), zap.Error(err))
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", zap.String("path", path))
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	dbPath = ""
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

// SaveSnapshot writes a named snapshot envelope. Snapshots are whole-store
// JSON blobs keyed by name; each write replaces the previous one.
func SaveSnapshot(name string, data []byte) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	key := []byte(snapshotPrefix + name)
	if err := db.Set(key, data, pebble.Sync); err != nil {
		logger.Error("save_snapshot_failed", zap.String("name", name), zap.Error(err))
		snapshotWriteErrors.WithLabelValues(name).Inc()
		return err
	}
	snapshotWrites.WithLabelValues(name).Inc()
	snapshotBytes.WithLabelValues(name).Set(float64(len(data)))
	logger.Debug("snapshot_saved", zap.String("name", name), zap.Int("len", len(data)))
	return nil
}

// LoadSnapshot returns the stored envelope for a named snapshot. The second
// return value is false when no snapshot with that name exists.
func LoadSnapshot(name string) ([]byte, bool, error) {
	if db == nil {
		return nil, false, fmt.Errorf("pebble not opened; call store.Open first")
	}
	v, closer, err := db.Get([]byte(snapshotPrefix + name))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	out := append([]byte(nil), v...)
	if closer != nil {
		defer closer.Close()
	}
	return out, true, nil
}

// DeleteSnapshot removes a named snapshot if present.
func DeleteSnapshot(name string) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	return db.Delete([]byte(snapshotPrefix+name), pebble.Sync)
}

// ListSnapshots returns the names of all stored snapshots.
func ListSnapshots() ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte(snapshotPrefix)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		out = append(out, string(iter.Key()[len(prefix):]))
	}
	return out, iter.Error()
}

// GetKey returns the raw value for the given key.
func GetKey(key string) (string, error) {
	if db == nil {
		return "", fmt.Errorf("pebble not opened; call store.Open first")
	}
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		return "", err
	}
	if closer != nil {
		defer closer.Close()
	}
	return string(v), nil
}

// SaveKey stores an arbitrary key/value pair. Use with caution; callers
// should choose a safe namespace outside "snapshot:".
func SaveKey(key string, value []byte) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	return db.Set([]byte(key), value, pebble.Sync)
}

// DBIter returns a raw Pebble iterator for low-level operations. Caller must
// close the iterator when done.
func DBIter() (*pebble.Iterator, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	return db.NewIter(&pebble.IterOptions{})
}
