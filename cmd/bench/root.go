package bench

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/dKG/cmd/util"
	"github.com/ValentinKolb/dKG/lib/comm"
	"github.com/ValentinKolb/dKG/lib/fetch"
	"github.com/ValentinKolb/dKG/lib/grid"
	"github.com/ValentinKolb/dKG/lib/kmer"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	BenchCmd = &cobra.Command{
		Use:     "bench",
		Short:   "Throughput benchmarks of the vertex store",
		Long:    "Runs insert, find, thread and fetch benchmarks against an in-process vertex store and reports ns/op and per operation latency percentiles",
		RunE:    run,
		PreRunE: processBenchConfig,
	}
	benchWordSize = 31
	benchKmers    = 1000000
	benchRanks    = 4
	benchBins     = 1 << 16
	benchSeed     int64
	benchSkip     = make([]string, 0)
)

func init() {
	key := "word-size"
	BenchCmd.Flags().Int(key, 31, util.WrapString("Length of the k-mers"))
	key = "kmers"
	BenchCmd.Flags().Int(key, 1000000, util.WrapString("Length of the random sequence, roughly the number of distinct k-mers"))
	key = "ranks"
	BenchCmd.Flags().Int(key, 4, util.WrapString("Number of simulated ranks for the fetch benchmark"))
	key = "bins"
	BenchCmd.Flags().Int(key, 1<<16, util.WrapString("Number of bins of the benchmarked tables"))
	key = "seed"
	BenchCmd.Flags().Int64(key, 1, util.WrapString("Seed of the random sequence"))
	key = "skip"
	BenchCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. insert,fetch)"))
}

func processBenchConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	benchWordSize = viper.GetInt("word-size")
	benchKmers = viper.GetInt("kmers")
	benchRanks = viper.GetInt("ranks")
	benchBins = viper.GetInt("bins")
	benchSeed = viper.GetInt64("seed")
	benchSkip = util.SplitList(viper.GetString("skip"))

	if benchWordSize < 1 || benchWordSize > 32 {
		return fmt.Errorf("word size must be between 1 and 32, got %d", benchWordSize)
	}
	if benchKmers < benchWordSize || benchRanks < 1 || benchBins < 1 {
		return fmt.Errorf("kmers, ranks and bins must be positive")
	}
	return nil
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Throughput benchmarks of the dKG vertex store")
	fmt.Println()
	fmt.Printf("Word size: %d\n", benchWordSize)
	fmt.Printf("K-mers:    %d\n", benchKmers)
	fmt.Printf("Ranks:     %d\n", benchRanks)
	fmt.Printf("Bins:      %d\n", benchBins)
	fmt.Println()

	seq := randomSequence(benchKmers+benchWordSize-1, benchSeed)
	keys := sequenceKeys(seq, benchWordSize)
	registry := gometrics.NewRegistry()

	fmt.Println("starting tests...")

	insertResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("insert") {
			return
		}
		timer := gometrics.GetOrRegisterTimer("insert", registry)
		table := newTable()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			start := time.Now()
			table.Insert(keys[i%len(keys)])
			timer.UpdateSince(start)
		}
	})
	printResult("insert", insertResult, registry)

	findResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("find") {
			return
		}
		timer := gometrics.GetOrRegisterTimer("find", registry)
		table := newTable()
		for _, key := range keys {
			table.Insert(key)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			start := time.Now()
			if table.Find(keys[i%len(keys)]) == nil {
				b.Fatalf("inserted k-mer %d not found", i%len(keys))
			}
			timer.UpdateSince(start)
		}
	})
	printResult("find", findResult, registry)

	threadResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("thread") {
			return
		}
		timer := gometrics.GetOrRegisterTimer("thread", registry)
		b.SetBytes(int64(len(seq)))
		for i := 0; i < b.N; i++ {
			table := newTable()
			start := time.Now()
			if _, err := table.AddSequence(seq, 1, nil); err != nil {
				b.Fatal(err)
			}
			timer.UpdateSince(start)
		}
	})
	printResult("thread", threadResult, registry)

	fetchResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("fetch") {
			return
		}
		timer := gometrics.GetOrRegisterTimer("fetch", registry)
		router := comm.Router{Ranks: benchRanks, WordSize: benchWordSize}
		handlers := map[comm.Rank]comm.Handler{}
		var local *grid.GridTable
		for r := 0; r < benchRanks; r++ {
			table := newTable()
			if _, err := table.AddSequence(seq, 1, router.Owns(comm.Rank(r))); err != nil {
				b.Fatal(err)
			}
			handlers[comm.Rank(r)] = fetch.NewResponder(table)
			if r == 0 {
				local = table
			}
		}
		loopback := comm.NewLoopback(handlers)
		f := fetch.NewAttributeFetcher(1, 0, router, local, loopback)

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			key := keys[i%len(keys)]
			start := time.Now()
			for !f.Fetch(key) {
				loopback.Advance()
			}
			f.Reset()
			timer.UpdateSince(start)
		}
	})
	printResult("fetch", fetchResult, registry)

	fmt.Println()
	fmt.Println("raw timers:")
	gometrics.WriteOnce(registry, os.Stdout)
	return nil
}

func newTable() *grid.GridTable {
	opts := grid.DefaultOptions()
	opts.NumberOfBins = benchBins
	table := grid.NewGridTable(0, opts)
	table.SetWordSize(benchWordSize)
	return table
}

func shouldSkip(test string) bool {
	for _, s := range benchSkip {
		if strings.EqualFold(s, test) {
			return true
		}
	}
	return false
}

// randomSequence returns a reproducible random DNA sequence
func randomSequence(length int, seed int64) string {
	rng := rand.New(rand.NewSource(seed))
	bases := "ACGT"
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = bases[rng.Intn(len(bases))]
	}
	return string(buf)
}

// sequenceKeys returns the k-mers of seq in order
func sequenceKeys(seq string, w int) []uint64 {
	keys := make([]uint64, 0, len(seq)-w+1)
	for i := 0; i+w <= len(seq); i++ {
		key, err := kmer.Encode(seq[i : i+w])
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

func printResult(test string, result testing.BenchmarkResult, registry gometrics.Registry) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-12sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-12s%.0fns/op (%s/op)\t%.0f ops/sec", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
	if timer, ok := registry.Get(test).(gometrics.Timer); ok {
		p := timer.Percentiles([]float64{0.5, 0.99})
		fmt.Printf("\tp50 %s\tp99 %s", time.Duration(p[0]), time.Duration(p[1]))
	}
	fmt.Println()
}
