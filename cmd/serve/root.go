package serve

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	cmdUtil "github.com/ValentinKolb/dKG/cmd/util"
	"github.com/ValentinKolb/dKG/lib/cleanup"
	"github.com/ValentinKolb/dKG/lib/comm"
	"github.com/ValentinKolb/dKG/lib/fetch"
	"github.com/ValentinKolb/dKG/lib/grid"
	"github.com/ValentinKolb/dKG/lib/kmer"
	"github.com/ValentinKolb/dKG/rpc/client"
	"github.com/ValentinKolb/dKG/rpc/common"
	"github.com/ValentinKolb/dKG/rpc/server"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("serve")

var (
	serveCmdConfig  = &common.ServerConfig{}
	clientCmdConfig = &common.ClientConfig{}
	sequencesPath   string
	tipOutputPath   string
	connectRetries  int

	// pause of the rank loop while it waits for a peer
	idlePause = 200 * time.Microsecond

	ServeCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run one rank of the dKG graph store",
		Long: `Run one rank of the dKG graph store. The rank loads its partition of the input sequences, answers vertex requests of its peers and runs a tip removal pass over its vertices. Afterwards it keeps answering requests until it is interrupted.
The configuration can be set via command line flags or environment variables. The format of the environment variables is DKG_<flag> (e.g. DKG_WORD_SIZE=31)`,
		PreRunE: processConfig,
		RunE:    run,
	}

	// current number of local vertices, read by the metrics handler
	localVertices atomic.Uint64
	rankRounds    = metrics.NewCounter("dkg_rank_rounds_total")
	_             = metrics.NewGauge("dkg_grid_vertices", func() float64 {
		return float64(localVertices.Load())
	})
)

func init() {
	// rank layout
	key := "rank"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Rank served by this process (0 based)"))

	key = "endpoints"
	ServeCmd.PersistentFlags().String(key, "localhost:8080", cmdUtil.WrapString("Comma-separated list of the endpoints of all ranks, ordered by rank. The number of entries is the number of ranks"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The address on which this rank listens (e.g. 0.0.0.0:8080, /tmp/dkg-0.sock). Defaults to the entry of this rank in endpoints"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 10, cmdUtil.WrapString("Timeout in seconds for a single vertex request"))

	// peer connections
	key = "conn-per-endpoint"
	ServeCmd.PersistentFlags().Int(key, 1, cmdUtil.WrapString("Simultaneous connections to every peer"))

	key = "retries"
	ServeCmd.PersistentFlags().Int(key, 3, cmdUtil.WrapString("How many times to retry a vertex request"))

	key = "connect-retries"
	ServeCmd.PersistentFlags().Int(key, 30, cmdUtil.WrapString("How many seconds to wait for all peers to come up"))

	key = "tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval in seconds (only for tcp)"))

	key = "workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, 16, cmdUtil.WrapString("Requests handled concurrently per incoming connection"))

	// graph
	key = "word-size"
	ServeCmd.PersistentFlags().Int(key, 31, cmdUtil.WrapString("Length of the k-mers (1 - 32)"))

	key = "bins"
	ServeCmd.PersistentFlags().Int(key, grid.DefaultNumberOfBins, cmdUtil.WrapString("Number of bins of the vertex table"))

	key = "arena-region-size"
	ServeCmd.PersistentFlags().Int(key, grid.DefaultOptions().ArenaRegionSize, cmdUtil.WrapString("Vertices per arena region"))

	key = "arena-regions"
	ServeCmd.PersistentFlags().Int(key, grid.DefaultOptions().ArenaMaxRegions, cmdUtil.WrapString("Maximum number of arena regions. Running out of regions is fatal"))

	key = "tip-max-coverage"
	ServeCmd.PersistentFlags().Int(key, cleanup.DefaultTipMaxCoverage, cmdUtil.WrapString("Highest coverage of a dead end to be considered a tip"))

	key = "junction-depth"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("How far the other branch of a junction must reach (0 = word size)"))

	// input and output
	key = "sequences"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("File with the input sequences (one per line or FASTA)"))

	key = "tip-output"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Optional file the k-mers marked as tips are written to"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address for the Prometheus /metrics endpoint (e.g. :9100), empty to disable"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	endpoints := cmdUtil.SplitList(viper.GetString("endpoints"))
	if len(endpoints) == 0 {
		return fmt.Errorf("at least one endpoint is required")
	}

	serveCmdConfig.Rank = viper.GetInt("rank")
	serveCmdConfig.Ranks = len(endpoints)
	if serveCmdConfig.Rank < 0 || serveCmdConfig.Rank >= serveCmdConfig.Ranks {
		return fmt.Errorf("rank %d is not in [0, %d)", serveCmdConfig.Rank, serveCmdConfig.Ranks)
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	if serveCmdConfig.Endpoint == "" {
		serveCmdConfig.Endpoint = endpoints[serveCmdConfig.Rank]
	}
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.TCPNoDelay = viper.GetBool("tcp-nodelay")
	serveCmdConfig.TCPKeepAliveSec = viper.GetInt("tcp-keepalive")
	serveCmdConfig.WorkersPerConn = viper.GetInt("workers-per-conn")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	serveCmdConfig.Graph = common.GraphConfig{
		WordSize:        viper.GetInt("word-size"),
		Bins:            viper.GetInt("bins"),
		ArenaRegionSize: viper.GetInt("arena-region-size"),
		ArenaRegions:    viper.GetInt("arena-regions"),
		TipMaxCoverage:  viper.GetInt("tip-max-coverage"),
		JunctionDepth:   viper.GetInt("junction-depth"),
	}
	if err := serveCmdConfig.Graph.Validate(); err != nil {
		return err
	}

	clientCmdConfig.Endpoints = endpoints
	clientCmdConfig.TimeoutSecond = int(serveCmdConfig.TimeoutSecond)
	clientCmdConfig.RetryCount = viper.GetInt("retries")
	clientCmdConfig.ConnectionsPerEndpoint = viper.GetInt("conn-per-endpoint")
	clientCmdConfig.TCPNoDelay = serveCmdConfig.TCPNoDelay

	sequencesPath = viper.GetString("sequences")
	tipOutputPath = viper.GetString("tip-output")
	connectRetries = viper.GetInt("connect-retries")

	return nil
}

// run starts one rank and blocks until it is interrupted
func run(_ *cobra.Command, _ []string) error {
	if err := common.InitLoggers(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	fmt.Println(serveCmdConfig.String())
	fmt.Println(clientCmdConfig.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rank := comm.Rank(serveCmdConfig.Rank)
	graph := serveCmdConfig.Graph
	router := comm.Router{Ranks: serveCmdConfig.Ranks, WordSize: graph.WordSize}

	// build the local partition
	table := grid.NewGridTable(serveCmdConfig.Rank, grid.Options{
		NumberOfBins:    graph.Bins,
		ArenaRegionSize: graph.ArenaRegionSize,
		ArenaMaxRegions: graph.ArenaRegions,
	})
	table.SetWordSize(graph.WordSize)

	if sequencesPath != "" {
		start := time.Now()
		sequences, stored, err := threadSequences(sequencesPath, table, 1, router.Owns(rank))
		if err != nil {
			return err
		}
		Logger.Infof("rank %d: threaded %d sequences (%d k-mers) in %s", rank, sequences, stored, time.Since(start))
	}
	localVertices.Store(table.Size())

	if serveCmdConfig.MetricsEndpoint != "" {
		go serveMetrics(serveCmdConfig.MetricsEndpoint)
	}

	// answer the peers
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}
	serverTransport, err := cmdUtil.GetServerTransport(64 * 1024)
	if err != nil {
		return err
	}
	srv := server.NewRankServer(*serveCmdConfig, serverTransport, s, fetch.NewResponder(table))
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve()
	}()
	defer srv.Close()

	// connect to the peers
	corr, err := connect(ctx, srv)
	if err != nil {
		return err
	}
	defer corr.Close()

	// tip removal pass
	remover := cleanup.NewTipRemover(
		table,
		fetch.NewAttributeFetcher(comm.WorkerID(rank)+1, rank, router, table, corr),
		cleanup.TipOptions{
			ID:            comm.WorkerID(rank) + 1,
			MaxCoverage:   graph.TipMaxCoverage,
			JunctionDepth: graph.JunctionDepth,
		},
	)
	pool := cleanup.NewPool(remover)
	start := time.Now()
	if err := runPool(ctx, pool, func() int { return srv.Drain(0) }, func() bool { return corr.Pending() > 0 }, idlePause); err != nil {
		Logger.Warningf("rank %d: interrupted during tip removal", rank)
		return nil
	}
	Logger.Infof("rank %d: tip removal marked %d vertices in %s (%d rounds)",
		rank, remover.NumberOfRemovedVertices(), time.Since(start), pool.Rounds())

	if tipOutputPath != "" {
		if err := writeKmers(tipOutputPath, remover.VerticesToRemove(), graph.WordSize); err != nil {
			return err
		}
	}
	fmt.Println(table.Info().String())

	// keep answering the peers that are still working
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			Logger.Infof("rank %d: shutting down", rank)
			return nil
		case err := <-serveErr:
			return err
		case <-ticker.C:
			srv.Drain(0)
		}
	}
}

// runPool steps the pool until its workers are done, answering the peers after
// every round. A round in which nothing was answered while requests of the own
// workers are outstanding is followed by a pause of at most pause.
func runPool(ctx context.Context, pool *cleanup.Pool, drain func() int, waiting func() bool, pause time.Duration) error {
	ticker := time.NewTicker(pause)
	defer ticker.Stop()

	return pool.Run(ctx, func() {
		rankRounds.Inc()
		if drain() > 0 || !waiting() {
			return
		}
		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	})
}

// connect waits until every peer accepts connections. The own inbox is drained
// meanwhile so peers that are already connected are not blocked.
func connect(ctx context.Context, srv *server.RankServer) (*client.Correlator, error) {
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return nil, err
	}

	attempts := max(connectRetries, 1)
	for i := 0; ; i++ {
		t, err := cmdUtil.GetClientTransport()
		if err != nil {
			return nil, err
		}
		corr, err := client.NewCorrelator(*clientCmdConfig, t, s)
		if err == nil {
			return corr, nil
		}
		if i+1 >= attempts {
			return nil, fmt.Errorf("peers not reachable after %d attempts: %v", attempts, err)
		}
		Logger.Infof("waiting for peers (%d/%d): %v", i+1, attempts, err)

		deadline := time.After(time.Second)
	wait:
		for {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-deadline:
				break wait
			case <-time.After(time.Millisecond):
				srv.Drain(0)
			}
		}
	}
}

// serveMetrics exposes the VictoriaMetrics registry in the Prometheus format
func serveMetrics(endpoint string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	Logger.Infof("metrics available at %s/metrics", endpoint)
	if err := http.ListenAndServe(endpoint, mux); err != nil {
		Logger.Errorf("metrics endpoint stopped: %v", err)
	}
}

// writeKmers writes the decoded keys to path, one per line
func writeKmers(path string, keys []uint64, wordSize int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, key := range keys {
		if _, err := fmt.Fprintln(w, kmer.Decode(key, wordSize)); err != nil {
			return err
		}
	}
	return w.Flush()
}
