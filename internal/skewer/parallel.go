package skewer

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-skewer/internal/variant"
)

// TrackJob is one track to lay out.
type TrackJob struct {
	Seq       int
	Name      string
	Records   []variant.Record
	View      View
	Projector Projector
	Mode      Mode
}

// TrackResult holds the layout of one track.
type TrackResult struct {
	Seq    int
	Name   string
	Layout *Layout
	Err    error
}

// RenderTracks lays out tracks using a pool of workers, each track with its
// own Session. Results are sent in arrival order; use OrderedCollect to
// consume them in sequence order. If workers is 0, runtime.NumCPU() is used.
func RenderTracks(jobs <-chan TrackJob, workers int, cfg Config, logger *zap.Logger) <-chan TrackResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make(chan TrackResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for job := range jobs {
				s := NewSession(cfg)
				s.SetLogger(logger.With(zap.String("track", job.Name)))
				l, err := s.Render(job.Records, job.View, job.Projector, job.Mode)
				results <- TrackResult{Seq: job.Seq, Name: job.Name, Layout: l, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results and emits them as soon as the next
// expected sequence number arrives. Blocks until results is closed.
func OrderedCollect(results <-chan TrackResult, fn func(TrackResult) error) error {
	pending := make(map[int]TrackResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
