// Package cli implements ghostctl, the command line front end to the
// bulk editor.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nishantmodak/ghost-admin/internal/batch"
	"github.com/nishantmodak/ghost-admin/internal/config"
	"github.com/nishantmodak/ghost-admin/internal/ghost"
	"github.com/nishantmodak/ghost-admin/internal/history"
	"github.com/nishantmodak/ghost-admin/internal/pipeline"
)

// Site is a Ghost site the CLI can edit.
type Site interface {
	batch.Store
	Ping(ctx context.Context) (int, error)
}

// Connect opens the Ghost site named by cfg.
type Connect func(cfg config.Config) (Site, error)

// ConnectGhost connects to the Admin API.
func ConnectGhost(cfg config.Config) (Site, error) {
	if err := cfg.ValidateGhost(); err != nil {
		return nil, err
	}
	c, err := ghost.NewClient(cfg.GhostURL, cfg.GhostAdminKey,
		ghost.WithAPIVersion(cfg.GhostAPIVersion),
		ghost.WithRateLimit(cfg.GhostRPS, cfg.GhostBurst),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

type globalFlags struct {
	dryRun      bool
	concurrency int
	verbose     bool
	noHistory   bool
}

// NewRootCmd builds the command tree.
func NewRootCmd(connect Connect) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "ghostctl",
		Short: "Bulk edit links and image alt text on a Ghost site",
		Long: `ghostctl scans every post on a Ghost site for links and images and
rewrites them in bulk. The site is read from GHOST_URL and GHOST_ADMIN_KEY.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&g.dryRun, "dry-run", false, "compute changes without writing to Ghost")
	root.PersistentFlags().IntVar(&g.concurrency, "concurrency", 0, "posts edited at once (default BATCH_CONCURRENCY)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log each post as it is written")
	root.PersistentFlags().BoolVar(&g.noHistory, "no-history", false, "do not record the run in HISTORY_DB")

	open := func(cmd *cobra.Command) (*session, error) {
		return newSession(cmd, g, connect)
	}
	root.AddCommand(
		newScanCmd(open),
		newReplaceLinksCmd(open),
		newFixAltCmd(open),
		newApplyCmd(open),
		newPingCmd(open),
		newRunsCmd(open),
	)
	return root
}

type opener func(cmd *cobra.Command) (*session, error)

// session holds what one command invocation needs.
type session struct {
	cfg     config.Config
	site    Site
	log     *slog.Logger
	history *history.Store
	dryRun  bool
}

func newSession(cmd *cobra.Command, g *globalFlags, connect Connect) (*session, error) {
	cfg := config.Load()
	if g.concurrency > 0 {
		cfg.BatchConcurrency = g.concurrency
	}

	site, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelInfo
	}
	s := &session{
		cfg:    cfg,
		site:   site,
		log:    slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})),
		dryRun: g.dryRun || cfg.DryRun,
	}

	if !g.noHistory && cfg.HistoryDB != "" {
		h, err := history.Open(cfg.HistoryDB)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.history = h
	}
	return s, nil
}

func (s *session) Close() {
	if s.history != nil {
		s.history.Close()
	}
	if c, ok := s.site.(interface{ Close() }); ok {
		c.Close()
	}
}

// runJob runs job to completion in the foreground.
func (s *session) runJob(ctx context.Context, job *pipeline.Job) pipeline.JobSnapshot {
	var rec pipeline.Recorder
	if s.history != nil {
		rec = s.history
	}
	pipeline.NewWorker(s.site, rec, s.log, s.cfg.BatchConcurrency).Process(ctx, job)
	return job.Snapshot()
}
