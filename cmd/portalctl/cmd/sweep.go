package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func SweepCmd() *cobra.Command {
	var dryRun bool

	c := &cobra.Command{
		Use:   "sweep",
		Short: "Delete blobs no content record references",
		Long: "Lists every object under content/ and deletes those whose key no record\n" +
			"points at. Records whose upload has stayed pending past PENDING_UPLOAD_GRACE\n" +
			"are reported but not changed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.ContentService.Sweep(cmd.Context(), dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, key := range report.Orphans {
				fmt.Fprintf(out, "orphan\t%s\n", key)
			}
			for _, id := range report.StalePending {
				fmt.Fprintf(out, "pending\t%s\n", id)
			}
			fmt.Fprintf(out, "scanned %d, orphans %d, deleted %d, stale pending %d\n",
				report.Scanned, len(report.Orphans), report.Deleted, len(report.StalePending))
			return nil
		},
	}

	c.Flags().BoolVar(&dryRun, "dry-run", false, "report orphans without deleting them")
	return c
}
