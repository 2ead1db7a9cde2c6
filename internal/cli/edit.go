package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nishantmodak/ghost-admin/internal/config"
	"github.com/nishantmodak/ghost-admin/internal/content"
	"github.com/nishantmodak/ghost-admin/internal/pipeline"
)

func newReplaceLinksCmd(open opener) *cobra.Command {
	var (
		postIDs      []string
		preservePath bool
	)
	cmd := &cobra.Command{
		Use:   "replace-links <pattern> <replacement>",
		Short: "Rewrite every link containing pattern",
		Long: `Rewrites links containing pattern in every post, or only in the posts
given with --post. With --preserve-path (the default) the path after
the pattern is kept and only the matched part changes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := content.LinkReplacementSpec{
				Pattern:      args[0],
				Replacement:  args[1],
				PreservePath: preservePath,
			}
			if err := spec.Validate(); err != nil {
				return err
			}

			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			snap := s.runJob(cmd.Context(), pipeline.NewLinksJob(spec, postIDs, s.dryRun))
			return report(cmd, snap)
		},
	}
	cmd.Flags().StringSliceVar(&postIDs, "post", nil, "only edit these post ids (repeatable)")
	cmd.Flags().BoolVar(&preservePath, "preserve-path", true, "keep the path after the matched pattern")
	return cmd
}

func newFixAltCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "fix-alt <post-id> <image-src> <alt-text>",
		Short: "Set the alt text of an image in one post",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := content.AltUpdateRequest{DocumentID: args[0], ImageSource: args[1], NewAltText: args[2]}
			if err := req.Validate(); err != nil {
				return err
			}

			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			snap := s.runJob(cmd.Context(), pipeline.NewAltJob([]content.AltUpdateRequest{req}, s.dryRun))
			return report(cmd, snap)
		},
	}
}

func newApplyCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <rules.yaml>",
		Short: "Apply link and alt text rules from a YAML file",
		Long: `Applies every link rule in file order, then all alt text rules as one
batch. Posts are re-read before each rule so later rules see earlier edits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := config.LoadRules(args[0])
			if err != nil {
				return err
			}

			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			dryRun := s.dryRun || rules.DryRun

			var errs []error
			for i, l := range rules.Links {
				cmd.Printf("Rule %d: %s -> %s\n", i+1, l.Pattern, l.Replacement)
				snap := s.runJob(cmd.Context(), pipeline.NewLinksJob(l.LinkReplacementSpec, l.PostIDs, dryRun))
				errs = append(errs, report(cmd, snap))
				if cmd.Context().Err() != nil {
					return errors.Join(errs...)
				}
			}
			if len(rules.AltText) > 0 {
				cmd.Printf("Alt text: %d updates\n", len(rules.AltText))
				snap := s.runJob(cmd.Context(), pipeline.NewAltJob(rules.AltText, dryRun))
				errs = append(errs, report(cmd, snap))
			}
			return errors.Join(errs...)
		},
	}
}

// report prints a finished job and turns failures into an error.
func report(cmd *cobra.Command, snap pipeline.JobSnapshot) error {
	verb := "updated"
	if snap.DryRun {
		verb = "would update"
	}
	for _, o := range snap.Results {
		if o.Success {
			cmd.Printf("  ok    %-24s %d changes  %s\n", o.DocumentID, o.ChangeCount, o.Title)
		} else {
			cmd.Printf("  FAIL  %-24s %s  %s\n", o.DocumentID, o.Error, o.Title)
		}
	}
	p := snap.Progress
	cmd.Printf("%d posts scanned, %d %s, %d failed, %d changes\n",
		p.DocumentsTotal, p.Updated, verb, p.Failed, p.Changes)
	if snap.RunID != "" {
		cmd.Printf("Run recorded as %s\n", snap.RunID)
	}

	switch snap.Status {
	case pipeline.StatusFailed:
		return fmt.Errorf("job failed: %s", strings.Join(p.Errors, "; "))
	case pipeline.StatusPartial:
		if len(p.Errors) > 0 {
			return fmt.Errorf("job stopped early: %s", strings.Join(p.Errors, "; "))
		}
		return fmt.Errorf("%d posts failed to update", p.Failed)
	}
	return nil
}
