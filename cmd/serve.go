package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/campsched/internal/auth"
	"github.com/example/campsched/internal/browser"
	"github.com/example/campsched/internal/config"
	"github.com/example/campsched/internal/db"
	"github.com/example/campsched/internal/history"
	"github.com/example/campsched/internal/jobs"
	"github.com/example/campsched/internal/notify"
	"github.com/example/campsched/internal/runner"
	"github.com/example/campsched/internal/scheduler"
	"github.com/example/campsched/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath  string
		fakeBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler (and the ops UI when configured)",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := config.FromEnv()
			if err != nil {
				return err
			}
			jobList, err := jobs.Load(configPath)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			notifier := notify.FromRuntime(rt)

			var recorder runner.Recorder
			var hist *history.Repo
			if rt.DatabaseURL != "" {
				d, err := db.Open(ctx, rt.DatabaseURL)
				if err != nil {
					return err
				}
				defer d.Close()
				if err := d.Ping(ctx); err != nil {
					return fmt.Errorf("db ping: %w", err)
				}
				hist = history.NewRepo(d)
				if err := hist.Migrate(ctx); err != nil {
					return fmt.Errorf("db migrate: %w", err)
				}
				recorder = hist
			}

			var launcher browser.Launcher = browser.NewChromeLauncher()
			if fakeBrowser {
				launcher = browser.NewFakeLauncher()
			}

			warnSharedState(rt, jobList)

			jr := runner.New(rt, notifier, launcher, jobList, recorder)
			sched := scheduler.New(jr, jobList)

			if rt.OpsAddr != "" {
				store := auth.NewStore(rt.CookieHashKey, rt.CookieBlockKey, rt.OpsPasswordHash)
				ws := &web.Server{
					Auth:   store,
					Jobs:   jobList,
					Status: jr,
					DryRun: rt.DryRun,
				}
				if hist != nil {
					ws.History = hist
				}
				go func() {
					if err := web.Start(ctx, rt.OpsAddr, ws.Routes()); err != nil {
						log.Printf("serve: ops server: %v", err)
					}
				}()
				log.Printf("serve: ops UI listening on %s", rt.OpsAddr)
			}

			// best effort: a broken messaging endpoint must not prevent
			// booking runs from starting
			enabled := 0
			for _, j := range jobList {
				if j.Enabled {
					enabled++
				}
			}
			if err := notifier.Send(ctx, fmt.Sprintf("campsched started: jobs=%d dry_run=%v", enabled, rt.DryRun)); err != nil {
				log.Printf("serve: startup notification: %v", err)
			}

			sched.Run(ctx)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "cfg/jobs.yaml", "path to the YAML job config")
	cmd.Flags().BoolVar(&fakeBrowser, "fake-browser", false, "use the in-memory browser (offline dry runs with the mock adapter)")
	return cmd
}

// warnSharedState flags the last-writer-wins hazard when several enabled
// jobs persist their session to the same path. The per-job lock does not
// guard across jobs; this is a configuration problem to fix, not one the
// core can resolve.
func warnSharedState(rt config.Runtime, jobList []jobs.Job) {
	if rt.StorageStatePath == "" {
		return
	}
	enabled := 0
	for _, j := range jobList {
		if j.Enabled {
			enabled++
		}
	}
	if enabled > 1 {
		log.Printf("serve: WARNING: %d enabled jobs share STORAGE_STATE_PATH=%s; their sessions will overwrite each other", enabled, rt.StorageStatePath)
	}
}
