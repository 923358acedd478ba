package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Formatting helpers
// --------------------------------------------------------------------------

type configWriter struct {
	sb strings.Builder
}

func (w *configWriter) addSection(title string) {
	w.sb.WriteString("\n")
	w.sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
}

func (w *configWriter) addField(name, value string) {
	w.sb.WriteString(fmt.Sprintf("  %-24s: %s\n", name, value))
}

// --------------------------------------------------------------------------
// Graph configuration struct
// --------------------------------------------------------------------------

// GraphConfig sizes the vertex store of a rank and tunes the cleanup passes
type GraphConfig struct {
	// k-mer length
	WordSize int
	// number of bins of the grid table, fixed for the lifetime of the store
	Bins int
	// arena elements per region and the maximum number of regions
	ArenaRegionSize int
	ArenaRegions    int

	// highest coverage of a tip candidate
	TipMaxCoverage int
	// how far a branch must reach to make a junction, 0 uses WordSize
	JunctionDepth int
}

// Validate checks the graph parameters
func (c *GraphConfig) Validate() error {
	if c.WordSize < 1 || c.WordSize > 32 {
		return fmt.Errorf("word size must be between 1 and 32, got %d", c.WordSize)
	}
	if c.Bins < 1 {
		return fmt.Errorf("number of bins must be positive, got %d", c.Bins)
	}
	if c.ArenaRegionSize < 1 || c.ArenaRegions < 1 {
		return fmt.Errorf("arena needs at least one region of positive size")
	}
	return nil
}

func (c *GraphConfig) write(w *configWriter) {
	w.addSection("Graph")
	w.addField("Word Size", strconv.Itoa(c.WordSize))
	w.addField("Bins", strconv.Itoa(c.Bins))
	w.addField("Arena Region Size", strconv.Itoa(c.ArenaRegionSize))
	w.addField("Arena Regions", strconv.Itoa(c.ArenaRegions))
	w.addField("Tip Max Coverage", strconv.Itoa(c.TipMaxCoverage))
	if c.JunctionDepth > 0 {
		w.addField("Junction Depth", strconv.Itoa(c.JunctionDepth))
	} else {
		w.addField("Junction Depth", "word size")
	}
}

// String returns a formatted string representation of the configuration
func (c *GraphConfig) String() string {
	var w configWriter
	c.write(&w)
	return w.sb.String()
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of one rank
type ServerConfig struct {
	// rank served by this process and the total number of ranks
	Rank  int
	Ranks int

	// address the rank listens on (host:port or socket path)
	Endpoint      string
	TimeoutSecond int64

	// socket options
	TCPNoDelay      bool
	TCPKeepAliveSec int
	WorkersPerConn  int

	// Prometheus metrics endpoint, empty to disable
	MetricsEndpoint string

	// Logging configuration
	LogLevel string

	Graph GraphConfig
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var w configWriter

	w.addSection("Rank")
	w.addField("Rank", fmt.Sprintf("%d of %d", c.Rank, c.Ranks))

	w.addSection("RPC Server")
	w.addField("Endpoint", c.Endpoint)
	w.addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	w.addField("TCP No Delay", strconv.FormatBool(c.TCPNoDelay))
	w.addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.TCPKeepAliveSec))
	w.addField("Workers Per Connection", strconv.Itoa(int(math.Max(1, float64(c.WorkersPerConn)))))

	w.addSection("Logging")
	w.addField("Log Level", c.LogLevel)
	if c.MetricsEndpoint != "" {
		w.addField("Metrics", c.MetricsEndpoint)
	}

	c.Graph.write(&w)
	return w.sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig configures the connections of a rank to its peers.
// Endpoints is indexed by rank.
type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
	TCPNoDelay             bool
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var w configWriter

	w.addSection("Client Configuration")
	w.addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	w.addField("Retry Count", strconv.Itoa(c.RetryCount))
	w.addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.ConnectionsPerEndpoint)))))

	w.addSection("Endpoints")
	for rank, endpoint := range c.Endpoints {
		w.addField("Rank "+strconv.Itoa(rank), endpoint)
	}

	return w.sb.String()
}
