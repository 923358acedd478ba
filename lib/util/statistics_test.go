package util

import (
	"math"
	"testing"
)

func TestNewStats(t *testing.T) {
	s := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.Mean != 5 || s.Min != 2 || s.Max != 9 {
		t.Errorf("unexpected stats %+v", s)
	}
	if math.Abs(s.StdDeviation-2) > 1e-9 {
		t.Errorf("expected std deviation 2, got %f", s.StdDeviation)
	}

	if empty := NewStats(nil); empty != (Stats{}) {
		t.Errorf("expected zero stats for no values, got %+v", empty)
	}
}

func TestDistributionStats(t *testing.T) {
	even := NewDistributionStats([]float64{10, 10, 10, 10})
	if even.DistributionQuality != 1 {
		t.Errorf("even distribution should have quality 1, got %f", even.DistributionQuality)
	}
	skewed := NewDistributionStats([]float64{0, 0, 0, 40})
	if skewed.DistributionQuality >= even.DistributionQuality {
		t.Error("skewed distribution should have a lower quality")
	}
}

func TestCountHistogram(t *testing.T) {
	h := NewCountHistogram()
	for _, v := range []int{0, 1, 1, 2, 3, 4, 7, 100} {
		h.AddSample(v)
	}

	if h.GetCount() != 8 {
		t.Errorf("expected 8 samples, got %d", h.GetCount())
	}
	if h.Average() != 118.0/8 {
		t.Errorf("unexpected average %f", h.Average())
	}
	if p := h.GetPercentileEstimate(50); p != 2 {
		t.Errorf("expected median bucket 2, got %d", p)
	}
	if p := h.GetPercentileEstimate(100); p != 128 {
		t.Errorf("expected max bucket 128, got %d", p)
	}

	boundaries, percentages := h.Distribution()
	if len(percentages) != len(boundaries)+1 {
		t.Fatalf("expected one overflow bucket")
	}
	var total float64
	for _, p := range percentages {
		total += p
	}
	if math.Abs(total-100) > 1e-9 {
		t.Errorf("percentages should add up to 100, got %f", total)
	}
}
