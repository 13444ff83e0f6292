package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pueo/pueonav"
	"github.com/pueo/pueonav/pkg/log"
	"github.com/pueo/pueonav/pkg/state"
)

type replayed struct {
	Index int    `json:"index"`
	Run   int    `json:"run"`
	Entry int    `json:"entry"`
	Event uint64 `json:"event"`
	Trig  uint32 `json:"trigType"`
}

func (a *app) replayCmd() *cobra.Command {
	var restart bool
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Walk a playlist, resuming from a bookmark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Playlist == "" {
				return fmt.Errorf("--playlist is required")
			}
			ctx, cancel := signalContext()
			defer cancel()

			ds, err := pueonav.New(a.options())
			if err != nil {
				return err
			}
			defer ds.Close()

			n, err := ds.SetPlaylist(a.cfg.Playlist)
			if err != nil {
				return err
			}

			var repo state.Repository
			var bm state.Bookmark
			if a.cfg.Bookmark != "" {
				repo = state.NewFileRepository(a.cfg.Bookmark)
				if bm, err = repo.Load(ctx); err != nil {
					return fmt.Errorf("load bookmark: %w", err)
				}
			}
			start := 0
			if !restart {
				start = bm.Resume(a.cfg.Playlist)
			}
			a.logger.Info("replaying playlist", log.Path(a.cfg.Playlist),
				log.Int("entries", n), log.Int("start", start))

			for i := start; i < n; i++ {
				if ctx.Err() != nil {
					a.logger.Info("replay interrupted", log.Int("index", i))
					return nil
				}
				pos, err := ds.NthInPlaylist(i)
				if err != nil {
					a.logger.Warn("skipping playlist entry", log.Int("index", i), log.Err(err))
					continue
				}
				h, err := ds.Header()
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), replayed{Index: i, Run: ds.Run(), Entry: pos, Event: h.EventNumber, Trig: h.TrigType}); err != nil {
					return err
				}
				if repo == nil {
					continue
				}
				bm.Advance(a.cfg.Playlist, i, ds.Run(), h.EventNumber)
				if err := repo.Save(ctx, bm); err != nil {
					return fmt.Errorf("save bookmark: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&a.cfg.Playlist, "playlist", a.cfg.Playlist, "playlist file")
	cmd.Flags().StringVar(&a.cfg.Bookmark, "bookmark", a.cfg.Bookmark, "bookmark file for resuming")
	cmd.Flags().BoolVar(&restart, "restart", false, "ignore the bookmark and start from the first entry")
	return cmd
}
