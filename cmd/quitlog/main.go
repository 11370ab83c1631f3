package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/anfask/quitlog/internal/cli"
	"github.com/anfask/quitlog/internal/reconcile"
	"github.com/anfask/quitlog/internal/storage"
	"github.com/anfask/quitlog/internal/tracker"
)

var CLI struct {
	Version   kong.VersionFlag
	Config    string `help:"Store file path." type:"path" default:"~/.config/quitlog/quitlog.db"`
	User      string `help:"Username to operate on." default:"default"`
	GapPolicy string `help:"How unrecorded days affect the streak." enum:"treat-as-non-smoking,breaks-streak" default:"treat-as-non-smoking"`

	Init     cli.InitCmd     `cmd:"" help:"Initialize quitlog storage."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Status   cli.StatusCmd   `cmd:"" help:"Show progress and missing days."`
	Record   cli.RecordCmd   `cmd:"" help:"Record whether you smoked on a day."`
	Backfill cli.BackfillCmd `cmd:"" help:"Mark all missing days as smoke-free."`
	Recalc   cli.RecalcCmd   `cmd:"" help:"Recompute derived metrics from daily records."`
	Import   cli.ImportCmd   `cmd:"" help:"Migrate legacy counter-based users to daily records."`
	Backup   struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a backup of the store."`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore the store from a backup."`
	} `cmd:"" help:"Manage store backups."`
	Doctor cli.DoctorCmd `cmd:"" help:"Run health checks on the store."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("quitlog"),
		kong.Description("Smoking cessation tracker with per-day records and derived progress"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.3.0"},
	)

	// Determine storage type based on extension
	var store storage.Provider
	if strings.HasSuffix(CLI.Config, ".json") {
		store = storage.NewJSONStore(CLI.Config)
	} else {
		store = storage.NewSQLiteStore(CLI.Config)
	}

	appCtx := &cli.Context{
		Store:   store,
		Tracker: tracker.New(store, reconcile.GapPolicy(CLI.GapPolicy)),
		User:    CLI.User,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
