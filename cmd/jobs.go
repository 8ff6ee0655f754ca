package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/example/campsched/internal/adapter"
	"github.com/example/campsched/internal/jobs"
	"github.com/spf13/cobra"
)

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect the job config file",
	}
	cmd.AddCommand(newJobsListCmd())
	return cmd
}

func newJobsListCmd() *cobra.Command {
	var configPath string

	c := &cobra.Command{
		Use:   "list",
		Short: "Parse, validate and print the configured jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobList, err := jobs.Load(configPath)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tADAPTER\tENABLED\tINTERVAL\tBASE URL")
			for _, j := range jobList {
				adapterCol := j.Adapter
				if _, err := adapter.Lookup(j.Adapter); err != nil {
					adapterCol = j.Adapter + " (UNKNOWN)"
				}
				fmt.Fprintf(w, "%s\t%s\t%v\t%ds\t%s\n", j.Name, adapterCol, j.Enabled, j.IntervalSec, j.BaseURL)
			}
			return w.Flush()
		},
	}

	c.Flags().StringVar(&configPath, "config", "cfg/jobs.yaml", "path to the YAML job config")
	return c
}
