package slots

import (
	"iter"
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/daterange"
)

// Generator discretizes aggregated free ranges into candidate slot start
// times. It holds only configuration; Sequence is pure, so the same
// generator can be walked any number of times.
type Generator struct {
	Length        time.Duration
	Frequency     time.Duration
	OffsetStart   time.Duration
	MinimumNotice time.Duration
	Now           time.Time
}

// Sequence yields slot start times at Frequency spacing within each
// range, shifted by OffsetStart. Starts earlier than Now+MinimumNotice
// are skipped, as are slots whose full length does not fit in the range.
func (g Generator) Sequence(ranges []daterange.Range) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if g.Length <= 0 || g.Frequency <= 0 {
			return
		}
		earliest := g.Now.Add(g.MinimumNotice)
		for _, r := range ranges {
			for t := r.Start.Add(g.OffsetStart); !t.Add(g.Length).After(r.End); t = t.Add(g.Frequency) {
				if t.Before(earliest) {
					continue
				}
				if !yield(t) {
					return
				}
			}
		}
	}
}

// Collect materializes the sequence.
func (g Generator) Collect(ranges []daterange.Range) []time.Time {
	var out []time.Time
	for t := range g.Sequence(ranges) {
		out = append(out, t)
	}
	return out
}
