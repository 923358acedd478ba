// Package cmd implements the command-line interface of dKG. It provides a
// hierarchical command structure for running a rank of the distributed graph
// store and for the tooling around it.
//
// The package is organized into several subpackages:
//
//   - serve: Runs one rank (store, rank server, peer connections, tip removal)
//   - bench: Local throughput benchmarks of the vertex store
//   - taxon: Inspects genome to taxon mapping files
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can also be set as environment variables with the DKG_ prefix
// (e.g. DKG_WORD_SIZE=31). See dkg -help for a list of all commands.
package cmd
