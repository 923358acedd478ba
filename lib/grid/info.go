package grid

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/dKG/lib/arena"
	"github.com/ValentinKolb/dKG/lib/util"
)

// Info summarizes the state of a table
type Info struct {
	Rank         int                    `json:"rank"`
	Size         uint64                 `json:"size"`
	Bins         int                    `json:"bins"`
	Frozen       bool                   `json:"frozen"`
	Occupancy    util.DistributionStats `json:"occupancy"`
	MedianBin    int                    `json:"median_bin"`
	P99Bin       int                    `json:"p99_bin"`
	Arena        arena.Stats            `json:"arena"`
	ArenaLimit   uint64                 `json:"arena_limit"`
	Annotated    int                    `json:"annotated"`
	CoverageMean float64                `json:"coverage_mean"`
}

// Info scans all bins. Expensive for the default bin count, meant for reporting.
func (t *GridTable) Info() Info {
	sizes := make([]float64, len(t.bins))
	binHistogram := util.NewCountHistogram()
	coverageHistogram := util.NewCountHistogram()

	for i, b := range t.bins {
		sizes[i] = float64(b.size)
		binHistogram.AddSample(int(b.size))
		if b.size == 0 {
			continue
		}
		for _, v := range t.allocator.Slice(b.block, int(b.size)) {
			coverageHistogram.AddSample(int(v.Coverage))
		}
	}

	return Info{
		Rank:         t.rank,
		Size:         t.size,
		Bins:         len(t.bins),
		Frozen:       t.frozen,
		Occupancy:    util.NewDistributionStats(sizes),
		MedianBin:    binHistogram.GetPercentileEstimate(50),
		P99Bin:       binHistogram.GetPercentileEstimate(99),
		Arena:        t.allocator.Stats(),
		ArenaLimit:   t.allocator.Capacity(),
		Annotated:    t.vertexTable.Size(),
		CoverageMean: coverageHistogram.Average(),
	}
}

// String returns a formatted representation of the info
func (i Info) String() string {
	var sb strings.Builder
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	sb.WriteString(fmt.Sprintf("GRID TABLE (rank %d)\n", i.Rank))
	addField("K-mers", fmt.Sprintf("%d", i.Size))
	addField("Bins", fmt.Sprintf("%d", i.Bins))
	addField("Frozen", fmt.Sprintf("%t", i.Frozen))
	addField("Bin Occupancy", fmt.Sprintf("mean %.2f, max %.0f, median <= %d, p99 <= %d",
		i.Occupancy.Mean, i.Occupancy.Max, i.MedianBin, i.P99Bin))
	addField("Distribution Quality", fmt.Sprintf("%.3f", i.Occupancy.DistributionQuality))
	addField("Coverage Mean", fmt.Sprintf("%.2f", i.CoverageMean))
	addField("Arena Regions", fmt.Sprintf("%d", i.Arena.Regions))
	addField("Arena High Water", fmt.Sprintf("%d of %d", i.Arena.HighWater, i.ArenaLimit))
	addField("Arena Reused", fmt.Sprintf("%d", i.Arena.Reused))
	addField("Annotated Vertices", fmt.Sprintf("%d", i.Annotated))
	return sb.String()
}
