package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/campsched/internal/browser"
	"github.com/example/campsched/internal/config"
	"github.com/example/campsched/internal/jobs"
	"github.com/example/campsched/internal/notify"
	"github.com/example/campsched/internal/runner"
	"github.com/spf13/cobra"
)

// run executes a single job once, outside the scheduler. Handy for manual
// triggers and for the first interactive login with HEADLESS=false.
func newRunCmd() *cobra.Command {
	var (
		configPath  string
		jobName     string
		fakeBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one job once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := config.FromEnv()
			if err != nil {
				return err
			}
			jobList, err := jobs.Load(configPath)
			if err != nil {
				return err
			}

			var job *jobs.Job
			for i := range jobList {
				if jobList[i].Name == jobName {
					job = &jobList[i]
					break
				}
			}
			if job == nil {
				return fmt.Errorf("no job named %q in %s", jobName, configPath)
			}
			if !job.Enabled {
				return fmt.Errorf("job %q is disabled", jobName)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var launcher browser.Launcher = browser.NewChromeLauncher()
			if fakeBrowser {
				launcher = browser.NewFakeLauncher()
			}

			jr := runner.New(rt, notify.FromRuntime(rt), launcher, jobList, nil)
			jr.RunOnce(ctx, *job)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "cfg/jobs.yaml", "path to the YAML job config")
	cmd.Flags().StringVar(&jobName, "job", "", "job name to run")
	cmd.Flags().BoolVar(&fakeBrowser, "fake-browser", false, "use the in-memory browser")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
