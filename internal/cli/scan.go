package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nishantmodak/ghost-admin/internal/batch"
	"github.com/nishantmodak/ghost-admin/internal/content"
)

func newScanCmd(open opener) *cobra.Command {
	scan := &cobra.Command{
		Use:   "scan",
		Short: "Report links or images without changing anything",
	}
	scan.AddCommand(newScanLinksCmd(open), newScanImagesCmd(open))
	return scan
}

func newScanLinksCmd(open opener) *cobra.Command {
	var (
		replacement  string
		preservePath bool
	)
	cmd := &cobra.Command{
		Use:   "links <pattern>",
		Short: "List links containing pattern",
		Long: `Lists every distinct link containing pattern, post by post.
With --replacement, shows what each link would become.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			docs, err := s.site.FetchAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch posts: %w", err)
			}

			var reports []batch.LinkReport
			if replacement != "" {
				reports, err = batch.PreviewLinks(docs, content.LinkReplacementSpec{
					Pattern:      args[0],
					Replacement:  replacement,
					PreservePath: preservePath,
				})
				if err != nil {
					return err
				}
			} else {
				reports = batch.AuditLinks(docs, args[0])
			}

			total := 0
			for _, r := range reports {
				total += len(r.Links)
			}
			cmd.Printf("Scanned %d posts: %d with matching links, %d links\n", len(docs), len(reports), total)
			for _, r := range reports {
				cmd.Printf("\n%s [%s] %s\n", r.Title, r.Status, r.ID)
				for _, l := range r.Links {
					if l.Replacement != "" {
						cmd.Printf("  %s -> %s\n", l.Original, l.Replacement)
					} else {
						cmd.Printf("  %s\n", l.Original)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&replacement, "replacement", "", "preview the rewrite to this domain or URL")
	cmd.Flags().BoolVar(&preservePath, "preserve-path", true, "keep the path after the matched pattern")
	return cmd
}

func newScanImagesCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List images missing alt text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			docs, err := s.site.FetchAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch posts: %w", err)
			}

			st := batch.CollectImageStats(docs)
			cmd.Printf("Scanned %d posts: %d images, %d missing alt text in %d posts\n",
				st.TotalPosts, st.TotalImages, st.TotalMissing, st.PostsWithIssues)
			cmd.Printf("Feature images: %d with alt, %d missing, %d posts without one\n",
				st.Feature.HasAlt, st.Feature.MissingAlt, st.Feature.NoFeatureImage)

			for _, r := range batch.AuditImages(docs) {
				cmd.Printf("\n%s [%s] %s\n", r.Title, r.Status, r.ID)
				for _, img := range r.Images {
					cmd.Printf("  %s\n", img.Source)
					if img.Context != "" {
						cmd.Printf("    %s\n", img.Context)
					}
				}
			}
			return nil
		},
	}
}
