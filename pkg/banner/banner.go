package banner

import (
	"fmt"

	"parley/pkg/config"
)

const banner = `
██████╗  █████╗ ██████╗ ██╗     ███████╗██╗   ██╗
██╔══██╗██╔══██╗██╔══██╗██║     ██╔════╝╚██╗ ██╔╝
██████╔╝███████║██████╔╝██║     █████╗   ╚████╔╝
██╔═══╝ ██╔══██║██╔══██╗██║     ██╔══╝    ╚██╔╝
██║     ██║  ██║██║  ██║███████╗███████╗   ██║
╚═╝     ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚══════╝   ╚═╝
`

// Print prints the startup banner using the effective config for runtime
// context (db path, metrics address, config source).
func Print(eff config.Effective, version string) {
	dbPath := eff.DBPath
	if dbPath == "" && eff.Config != nil {
		dbPath = eff.Config.Storage.DBPath
	}
	src := eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", src)
	if eff.Config != nil && eff.Config.Snapshot.Cron != "" {
		fmt.Printf("Sync:     %s\n", eff.Config.Snapshot.Cron)
	}
	if eff.MetricsAddr != "" {
		fmt.Printf("Metrics:  http://%s/metrics\n", eff.MetricsAddr)
	} else {
		fmt.Println("Metrics:  disabled (set --metrics-addr or metrics.addr)")
	}
	fmt.Println("\n== Stores =====================================================")
	fmt.Println("messages  chat history, DM channels, unread cursors")
	fmt.Println("servers   servers, channels, categories, invites")
	fmt.Println("users     accounts, friendships, blocks")
	fmt.Println("voice     device settings, per-user voice state")
}
