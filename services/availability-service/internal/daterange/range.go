package daterange

import (
	"sort"
	"time"
)

// Range is a half-open UTC interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Valid() bool { return r.End.After(r.Start) }

func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether [start, end) lies entirely within r.
func (r Range) Contains(start, end time.Time) bool {
	return !start.Before(r.Start) && !end.After(r.End)
}

// Sort orders ranges ascending by start time, ties broken by end time.
func Sort(ranges []Range) {
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].Start.Equal(ranges[j].Start) {
			return ranges[i].End.Before(ranges[j].End)
		}
		return ranges[i].Start.Before(ranges[j].Start)
	})
}

// Merge collapses overlapping or touching ranges into a sorted,
// non-overlapping set. The input slice is not modified.
func Merge(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Valid() {
			sorted = append(sorted, r)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	Sort(sorted)

	out := []Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if !r.Start.After(last.End) {
			if r.End.After(last.End) {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Subtract removes every busy interval from the free set, returning a
// sorted, non-overlapping remainder.
func Subtract(free, busy []Range) []Range {
	if len(busy) == 0 {
		return Merge(free)
	}
	current := Merge(free)
	blocked := Merge(busy)

	var out []Range
	for _, f := range current {
		segment := f
		for _, b := range blocked {
			if !segment.Valid() {
				break
			}
			if !segment.Overlaps(b) {
				continue
			}
			if b.Start.After(segment.Start) {
				out = append(out, Range{Start: segment.Start, End: b.Start})
			}
			if b.End.After(segment.Start) {
				segment.Start = b.End
			}
		}
		if segment.Valid() {
			out = append(out, segment)
		}
	}
	return out
}

// Intersect returns the overlap of two sorted range sets.
func Intersect(a, b []Range) []Range {
	var out []Range
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start.After(start) {
			start = b[j].Start
		}
		end := a[i].End
		if b[j].End.Before(end) {
			end = b[j].End
		}
		if end.After(start) {
			out = append(out, Range{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

// Clamp trims every range to [from, to), dropping ranges that fall
// entirely outside the window.
func Clamp(ranges []Range, from, to time.Time) []Range {
	var out []Range
	for _, r := range ranges {
		if r.Start.Before(from) {
			r.Start = from
		}
		if r.End.After(to) {
			r.End = to
		}
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}
