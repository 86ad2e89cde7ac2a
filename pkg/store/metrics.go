package store

import (
	"io/fs"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_snapshot_writes_total",
		Help: "Number of snapshot envelopes written, by store name.",
	}, []string{"store"})

	snapshotWriteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_snapshot_write_errors_total",
		Help: "Number of failed snapshot writes, by store name.",
	}, []string{"store"})

	snapshotBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "parley_snapshot_bytes",
		Help: "Size of the last written snapshot envelope, by store name.",
	}, []string{"store"})

	// Mutations counts state-changing store operations, by store and op.
	// Domain stores increment this directly.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_store_mutations_total",
		Help: "Number of store mutations, by store name and operation.",
	}, []string{"store", "op"})
)

// DBSizeBytes returns the best-effort on-disk size of the opened database
// directory, or zero when the store is closed.
func DBSizeBytes() uint64 {
	if db == nil || dbPath == "" {
		return 0
	}
	var total uint64
	_ = filepath.WalkDir(dbPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += uint64(fi.Size())
		}
		return nil
	})
	return total
}
