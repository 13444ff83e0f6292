package runindex

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pueo/pueonav/internal/locate"
	"github.com/pueo/pueonav/pkg/log"
	"github.com/pueo/pueonav/pkg/store"
)

// runBounds is what a scan learns from one run's header file.
type runBounds struct {
	run                   int
	firstEvent, lastEvent uint64
	firstTime, lastTime   int64
	ok                    bool
}

// scan opens the header file of every run under root, concurrency at a
// time, and returns the bounds of each run with at least one header.
func scan(ctx context.Context, root string, concurrency int, logger log.Logger) ([]runBounds, error) {
	runs, err := locate.Runs(root)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	out := make([]runBounds, len(runs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, run := range runs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := scanRun(root, run)
			if err != nil {
				logger.Warn("skipping run in scan", log.Run(run), log.Err(err))
				return nil
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := out[:0]
	for _, b := range out {
		if b.ok {
			kept = append(kept, b)
		}
	}
	logger.Info("scanned runs", log.Path(root), log.Int("runs", len(runs)), log.Int("indexed", len(kept)))
	return kept, nil
}

func scanRun(root string, run int) (runBounds, error) {
	path := locate.Find(locate.RunDir(root, run), run, locate.HeaderNames)
	if path == "" {
		return runBounds{}, locate.ErrMissingHeader
	}
	s, err := store.Open(path)
	if err != nil {
		return runBounds{}, err
	}
	defer s.Close()

	lo, hi, ok, err := s.MinMax("eventNumber")
	if err != nil {
		return runBounds{}, err
	}
	if !ok {
		return runBounds{}, fmt.Errorf("empty header file %s", path)
	}
	tlo, thi, _, err := s.MinMax("triggerTime")
	if err != nil {
		return runBounds{}, err
	}
	return runBounds{
		run:        run,
		firstEvent: uint64(lo),
		lastEvent:  uint64(hi),
		firstTime:  tlo,
		lastTime:   thi,
		ok:         true,
	}, nil
}
