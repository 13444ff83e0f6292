package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pueo/pueonav/pkg/log"
	"github.com/pueo/pueonav/pkg/record"
	"github.com/pueo/pueonav/pkg/store"
)

// kinds maps record kinds to a constructor for decoding targets.
var kinds = map[string]func() any{
	"header": func() any { return new(record.Header) },
	"event":  func() any { return new(record.RawEvent) },
	"useful": func() any { return new(record.UsefulEvent) },
	"gps":    func() any { return new(record.Attitude) },
	"truth":  func() any { return new(record.Truth) },
	"hical":  func() any { return new(record.HiCalFix) },
}

func kindNames() string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (a *app) convertCmd() *cobra.Command {
	var kind, in, out string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Rewrite a record file, validating each record (.zst output is zstd compressed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mk, ok := kinds[kind]
			if !ok {
				return fmt.Errorf("unknown kind %q (want one of %s)", kind, kindNames())
			}
			n, err := convert(in, out, mk)
			if err != nil {
				return err
			}
			a.logger.Info("converted", log.Path(out), log.String("kind", kind), log.Int("records", n))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "header", "record kind: "+kindNames())
	cmd.Flags().StringVar(&in, "in", "", "input record file")
	cmd.Flags().StringVar(&out, "out", "", "output record file")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func convert(in, out string, mk func() any) (int, error) {
	if in == out {
		return 0, fmt.Errorf("input and output are the same file")
	}
	src, err := store.Open(in)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	w, err := store.Create(out)
	if err != nil {
		return 0, err
	}
	for pos := 0; pos < src.Len(); pos++ {
		rec := mk()
		if err := src.Get(pos, rec); err != nil {
			w.Close()
			return 0, fmt.Errorf("record %d: %w", pos, err)
		}
		if err := w.Append(rec); err != nil {
			w.Close()
			return 0, err
		}
	}
	n := w.Count()
	return n, w.Close()
}
