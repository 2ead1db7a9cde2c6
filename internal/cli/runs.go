package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nishantmodak/ghost-admin/internal/history"
)

func newRunsCmd(open opener) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show recorded runs",
		Long: `Lists recent runs from HISTORY_DB. With a run id, shows the outcome
for every post in that run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			if s.history == nil {
				return fmt.Errorf("run history is disabled")
			}

			if len(args) == 1 {
				run, err := s.history.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", args[0])
				}
				printRun(cmd, *run)
				for _, o := range run.Outcomes {
					status := "ok"
					if !o.Success {
						status = "FAIL " + o.Error
					}
					cmd.Printf("  %-24s %d changes  %s  %s\n", o.DocumentID, o.ChangeCount, status, o.Title)
				}
				return nil
			}

			runs, err := s.history.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				printRun(cmd, r)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")
	return cmd
}

func printRun(cmd *cobra.Command, r history.Run) {
	dry := ""
	if r.DryRun {
		dry = " (dry run)"
	}
	cmd.Printf("%s  %s  %-5s  %d updated, %d failed, %d changes%s\n",
		r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Kind,
		r.Summary.Updated, r.Summary.Failed, r.Summary.Changes, dry)
}
