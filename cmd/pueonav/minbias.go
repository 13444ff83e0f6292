package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pueo/pueonav"
	"github.com/pueo/pueonav/pkg/dataset"
)

func (a *app) minbiasCmd() *cobra.Command {
	var (
		run, entry, count int
		backwards         bool
	)
	cmd := &cobra.Command{
		Use:   "minbias",
		Short: "List minimum-bias events after (or before) an entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := pueonav.Open(run, a.options())
			if err != nil {
				return err
			}
			defer ds.Close()
			if _, err := ds.GetEntry(entry); err != nil {
				return err
			}

			step := ds.NextMinBias
			if backwards {
				step = ds.PreviousMinBias
			}
			for i := 0; i < count; i++ {
				pos, err := step()
				if errors.Is(err, dataset.ErrNoMinBias) {
					return nil
				}
				if err != nil {
					return err
				}
				h, err := ds.Header()
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), replayed{Index: i, Run: ds.Run(), Entry: pos, Event: h.EventNumber, Trig: h.TrigType}); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&run, "run", 0, "run to start in")
	cmd.Flags().IntVar(&entry, "entry", 0, "entry to start from")
	cmd.Flags().IntVar(&count, "count", 10, "number of events to list")
	cmd.Flags().BoolVar(&backwards, "backwards", false, "search towards earlier entries")
	_ = cmd.MarkFlagRequired("run")
	return cmd
}
