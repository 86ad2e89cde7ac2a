package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"

	"github.com/cockroachdb/pebble"
	"github.com/spf13/cobra"
)

func init() {
	dumpCmd.Flags().Bool("raw", false, "print the stored envelope without indenting")
	rootCmd.AddCommand(dumpCmd)
}

var dumpCmd = &cobra.Command{
	Use:   "dump [db-path] [snapshot-name]",
	Short: "Print a snapshot's stored state",
	Long: `Dump prints the persisted envelope for one snapshot, for example
"messages", "servers", "users" or "voice".`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		raw, _ := cmd.Flags().GetBool("raw")
		dumpSnapshot(args[0], args[1], raw)
	},
}

func dumpSnapshot(dbPath, name string, raw bool) {
	db := openReadOnly(dbPath)
	defer db.Close()

	val, closer, err := db.Get([]byte("snapshot:" + name))
	if err == pebble.ErrNotFound {
		log.Fatalf("no snapshot named %q", name)
	}
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	if raw {
		fmt.Printf("%s\n", val)
		return
	}
	var out bytes.Buffer
	if err := json.Indent(&out, val, "", "  "); err != nil {
		// not JSON; print as-is
		fmt.Printf("%s\n", val)
		return
	}
	fmt.Println(out.String())
}
