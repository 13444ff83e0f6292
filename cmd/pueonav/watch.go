package main

import (
	"github.com/spf13/cobra"

	"github.com/pueo/pueonav/internal/watch"
)

func (a *app) watchCmd() *cobra.Command {
	var debounce = watch.DefaultDebounce
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Invalidate the cross-run index as runs appear",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := a.indexVersion()
			root, err := a.reg.DataDir(v)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			w := watch.New(a.reg, map[string]int{root: v},
				watch.WithLogger(a.logger), watch.WithDebounce(debounce))
			return w.Run(ctx)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", debounce, "quiet period before invalidating")
	return cmd
}
