package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/spf13/cobra"

	"parley/pkg/state"
)

func init() {
	rootCmd.AddCommand(keysCmd)
}

var keysCmd = &cobra.Command{
	Use:   "keys [db-path]",
	Short: "List snapshot keys and sizes",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		listKeys(args[0])
	},
}

// openReadOnly opens the store under a daemon --db path, falling back to
// treating the argument as the store directory itself.
func openReadOnly(dbPath string) *pebble.DB {
	p := state.StorePath(dbPath)
	if _, err := os.Stat(p); err != nil {
		p = dbPath
	}
	db, err := pebble.Open(p, &pebble.Options{ReadOnly: true})
	if err != nil {
		log.Fatal(err)
	}
	return db
}

func listKeys(dbPath string) {
	db := openReadOnly(dbPath)
	defer db.Close()

	iter, err := db.NewIter(nil)
	if err != nil {
		log.Fatal(err)
	}
	defer iter.Close()

	count := 0
	snapshots := 0

	for iter.First(); iter.Valid(); iter.Next() {
		key := string(iter.Key())
		count++
		if !strings.HasPrefix(key, "snapshot:") {
			continue
		}
		snapshots++
		ver := -1
		var env struct {
			Version int `json:"version"`
		}
		if json.Unmarshal(iter.Value(), &env) == nil {
			ver = env.Version
		}
		fmt.Printf("%-24s v%-3d %8d bytes\n", key, ver, len(iter.Value()))
	}

	fmt.Printf("\nTotal keys: %d (snapshots: %d)\n", count, snapshots)
}
