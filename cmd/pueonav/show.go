package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pueo/pueonav"
	"github.com/pueo/pueonav/pkg/record"
)

// eventSummary keeps show output readable for full waveforms.
type eventSummary struct {
	Channels int `json:"channels"`
	Samples  int `json:"samples"`
}

type shown struct {
	Run    int              `json:"run"`
	Entry  int              `json:"entry"`
	Header *record.Header   `json:"header"`
	GPS    *record.Attitude `json:"gps,omitempty"`
	Event  *eventSummary    `json:"event,omitempty"`
	Truth  *record.Truth    `json:"truth,omitempty"`
	HiCal  *[3]float64      `json:"hical,omitempty"`
	Blind  string           `json:"blinding"`
}

func (a *app) showCmd() *cobra.Command {
	var (
		run   int
		entry int
		event uint64
		hical bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the records of one entry as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := pueonav.New(a.options())
			if err != nil {
				return err
			}
			defer ds.Close()

			if err := a.position(cmd.Context(), ds, run, entry, event, cmd.Flags().Changed("event")); err != nil {
				return err
			}
			out, err := collect(ds, hical)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVar(&run, "run", -1, "run to load")
	cmd.Flags().IntVar(&entry, "entry", 0, "entry within the run")
	cmd.Flags().Uint64Var(&event, "event", 0, "event number (loads whichever run holds it)")
	cmd.Flags().BoolVar(&hical, "hical", false, "include the HiCal position at the event time")
	return cmd
}

// position loads the run named by --run, or the run the cross-run index
// assigns to --event, and moves the cursor onto the requested entry.
func (a *app) position(ctx context.Context, ds *pueonav.Dataset, run, entry int, event uint64, byEvent bool) error {
	if run < 0 {
		if !byEvent {
			return fmt.Errorf("--run or --event is required")
		}
		var err error
		if run, err = a.reg.RunContaining(ctx, a.indexVersion(), event); err != nil {
			return fmt.Errorf("event %d: %w", event, err)
		}
	}
	if err := ds.Load(run); err != nil {
		return err
	}
	if byEvent {
		if _, err := ds.GetEvent(event, a.cfg.Quiet); err != nil {
			return fmt.Errorf("event %d: %w", event, err)
		}
		return nil
	}
	if _, err := ds.GetEntry(entry); err != nil {
		return fmt.Errorf("entry %d: %w", entry, err)
	}
	return nil
}

func collect(ds *pueonav.Dataset, hical bool) (*shown, error) {
	h, err := ds.Header()
	if err != nil {
		return nil, err
	}
	out := &shown{Run: ds.Run(), Entry: ds.Current(), Header: h, Blind: ds.Blinding().String()}
	if out.GPS, err = ds.GPS(false); err != nil {
		return nil, err
	}
	if out.Truth, err = ds.Truth(false); err != nil {
		return nil, err
	}
	u, err := ds.Useful(false)
	if err != nil {
		return nil, err
	}
	if u != nil {
		s := &eventSummary{Channels: len(u.Volts)}
		if len(u.Volts) > 0 {
			s.Samples = len(u.Volts[0])
		}
		out.Event = s
	}
	if hical {
		lon, lat, alt := ds.HiCalNow()
		out.HiCal = &[3]float64{lon, lat, alt}
	}
	return out, nil
}
