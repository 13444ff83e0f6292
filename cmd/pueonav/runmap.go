package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pueo/pueonav/pkg/log"
)

func (a *app) runmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runmap",
		Short: "Build or query the cross-run index",
	}

	build := &cobra.Command{
		Use:   "build",
		Short: "Rebuild both tables and their caches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := a.indexVersion()
			a.reg.Invalidate(v)
			events, err := a.reg.EventTable(cmd.Context(), v)
			if err != nil {
				return err
			}
			times, err := a.reg.TimeTable(cmd.Context(), v)
			if err != nil {
				return err
			}
			a.logger.Info("run index built", log.Epoch(v),
				log.Int("eventRuns", events.Len()), log.Int("timeRuns", times.Len()))
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"version": v,
				"events":  events.Spans(),
				"times":   times.Spans(),
			})
		},
	}

	event := &cobra.Command{
		Use:   "event <number>",
		Short: "Print the run holding an event number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("event number: %w", err)
			}
			run, err := a.reg.RunContaining(cmd.Context(), a.indexVersion(), ev)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), run)
			return nil
		},
	}

	at := &cobra.Command{
		Use:   "time <unix-seconds>",
		Short: "Print the run recording at a trigger time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("time: %w", err)
			}
			run, err := a.reg.RunAtTime(cmd.Context(), a.indexVersion(), ts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), run)
			return nil
		},
	}

	cmd.AddCommand(build, event, at)
	return cmd
}
