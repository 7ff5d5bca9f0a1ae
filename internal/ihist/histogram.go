// Package ihist implements a fixed-bounds, log-linear integer histogram
// in the style of an HDR histogram. Its bucket array is allocated once, at
// construction, to cover the whole configured range. No third-party
// histogram library is reachable from this module's dependency set (see
// the project's grounding ledger), so this package is deliberately built
// on the standard library alone.
package ihist

import (
	"math"
	"math/bits"
)

// Config fixes the value range and precision of a Histogram. All
// histograms that are merged together must share the same Config.
type Config struct {
	// High is the highest value the histogram can record without
	// clamping. Values above High are recorded as High.
	High uint64
	// SigFigs is the number of significant decimal digits of resolution
	// preserved at the low end of the value range, 0-5.
	SigFigs uint8
}

// Histogram accumulates uint64 samples in fixed, pre-sized buckets. It is
// not safe for concurrent use; callers serialize access the same way the
// accumulator shard serializes access to everything else it owns.
type Histogram struct {
	cfg Config

	unitMagnitude               int
	subBucketHalfCountMagnitude int
	subBucketHalfCount          int
	subBucketCount              int
	subBucketMask               int64

	counts []uint64

	totalCount uint64
	minValue   uint64
	maxValue   uint64
}

// New builds a Histogram sized to record values in [1, cfg.High] with
// cfg.SigFigs significant figures of resolution.
func New(cfg Config) *Histogram {
	if cfg.High < 2 {
		cfg.High = 2
	}

	largestWithSingleUnitResolution := 2 * math.Pow10(int(cfg.SigFigs))
	subBucketCountMagnitude := int(math.Ceil(math.Log2(largestWithSingleUnitResolution)))

	subBucketHalfCountMagnitude := subBucketCountMagnitude - 1
	if subBucketHalfCountMagnitude < 1 {
		subBucketHalfCountMagnitude = 1
	}

	unitMagnitude := 0 // lowest discernible value is fixed at 1
	subBucketCount := 1 << uint(subBucketHalfCountMagnitude+1)
	subBucketHalfCount := subBucketCount / 2
	subBucketMask := int64(subBucketCount-1) << uint(unitMagnitude)

	smallestUntrackable := int64(subBucketCount) << uint(unitMagnitude)
	bucketsNeeded := 1

	for smallestUntrackable < int64(cfg.High) {
		if smallestUntrackable > math.MaxInt64/2 {
			bucketsNeeded++
			break
		}

		smallestUntrackable <<= 1
		bucketsNeeded++
	}

	countsLen := (bucketsNeeded + 1) * (subBucketCount / 2)

	return &Histogram{
		cfg:                         cfg,
		unitMagnitude:               unitMagnitude,
		subBucketHalfCountMagnitude: subBucketHalfCountMagnitude,
		subBucketHalfCount:          subBucketHalfCount,
		subBucketCount:              subBucketCount,
		subBucketMask:               subBucketMask,
		counts:                      make([]uint64, countsLen),
	}
}

// Record adds one sample of value v, clamping to the configured High.
func (h *Histogram) Record(v uint64) {
	if v == 0 {
		v = 1
	}

	if v > h.cfg.High {
		v = h.cfg.High
	}

	idx := h.countsIndex(int64(v))
	if idx >= 0 && idx < len(h.counts) {
		h.counts[idx]++
	}

	h.totalCount++

	if h.totalCount == 1 || v < h.minValue {
		h.minValue = v
	}

	if v > h.maxValue {
		h.maxValue = v
	}
}

// Merge folds other's samples into h. Both histograms must share the same
// Config; Merge is commutative and associative.
func (h *Histogram) Merge(other *Histogram) {
	if other == nil || other.totalCount == 0 {
		return
	}

	for i, c := range other.counts {
		if c == 0 {
			continue
		}

		if i < len(h.counts) {
			h.counts[i] += c
		}
	}

	if h.totalCount == 0 || other.minValue < h.minValue {
		h.minValue = other.minValue
	}

	if other.maxValue > h.maxValue {
		h.maxValue = other.maxValue
	}

	h.totalCount += other.totalCount
}

// Count returns the number of samples recorded.
func (h *Histogram) Count() uint64 { return h.totalCount }

// Min returns the smallest recorded value, or 0 if empty.
func (h *Histogram) Min() uint64 { return h.minValue }

// Max returns the largest recorded value, or 0 if empty.
func (h *Histogram) Max() uint64 { return h.maxValue }

// Mean returns the arithmetic mean of all recorded values, or 0 if empty.
func (h *Histogram) Mean() float64 {
	if h.totalCount == 0 {
		return 0
	}

	var sum float64

	for idx, c := range h.counts {
		if c == 0 {
			continue
		}

		sum += float64(c) * float64(h.valueFromIndex(idx))
	}

	return sum / float64(h.totalCount)
}

// Stdev returns the population standard deviation (dividing by the sample
// count) of all recorded values, or 0 if empty.
func (h *Histogram) Stdev() float64 {
	if h.totalCount == 0 {
		return 0
	}

	mean := h.Mean()

	var sumSq float64

	for idx, c := range h.counts {
		if c == 0 {
			continue
		}

		d := float64(h.valueFromIndex(idx)) - mean
		sumSq += float64(c) * d * d
	}

	return math.Sqrt(sumSq / float64(h.totalCount))
}

// ValueAtQuantile returns the value at or below which the fraction q of
// recorded samples fall, q in [0, 1].
func (h *Histogram) ValueAtQuantile(q float64) uint64 {
	if h.totalCount == 0 {
		return 0
	}

	if q < 0 {
		q = 0
	}

	if q > 1 {
		q = 1
	}

	target := uint64(math.Ceil(q * float64(h.totalCount)))
	if target == 0 {
		target = 1
	}

	var cumulative uint64

	for idx, c := range h.counts {
		if c == 0 {
			continue
		}

		cumulative += c
		if cumulative >= target {
			return h.valueFromIndex(idx)
		}
	}

	return h.maxValue
}

func (h *Histogram) countsIndex(v int64) int {
	bucketIdx := h.bucketIndex(v)
	subBucketIdx := h.subBucketIndex(v, bucketIdx)

	bucketBase := (bucketIdx + 1) << uint(h.subBucketHalfCountMagnitude)

	return bucketBase + subBucketIdx - h.subBucketHalfCount
}

func (h *Histogram) bucketIndex(v int64) int {
	pow2Ceiling := bits.Len64(uint64(v) | uint64(h.subBucketMask))
	return pow2Ceiling - h.unitMagnitude - (h.subBucketHalfCountMagnitude + 1)
}

func (h *Histogram) subBucketIndex(v int64, bucketIdx int) int {
	return int(v >> uint(bucketIdx+h.unitMagnitude))
}

func (h *Histogram) valueFromIndex(idx int) uint64 {
	bucketIdx := idx>>uint(h.subBucketHalfCountMagnitude) - 1
	subBucketIdx := idx&(h.subBucketHalfCount-1) + h.subBucketHalfCount

	if bucketIdx < 0 {
		subBucketIdx -= h.subBucketHalfCount
		bucketIdx = 0
	}

	return uint64(subBucketIdx) << uint(bucketIdx+h.unitMagnitude)
}
