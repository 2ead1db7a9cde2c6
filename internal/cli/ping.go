package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPingCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the Ghost credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.site.Ping(cmd.Context())
			if err != nil {
				return fmt.Errorf("connect to %s: %w", s.cfg.GhostURL, err)
			}
			cmd.Printf("Connected to %s (%d posts)\n", s.cfg.GhostURL, n)
			return nil
		},
	}
}
