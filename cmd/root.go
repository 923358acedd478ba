package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dKG/cmd/bench"
	"github.com/ValentinKolb/dKG/cmd/serve"
	"github.com/ValentinKolb/dKG/cmd/taxon"
	"github.com/ValentinKolb/dKG/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dkg",
		Short: "distributed de Bruijn graph store",
		Long: fmt.Sprintf(`dKG (v%s)

A distributed k-mer vertex store for de Bruijn graph assembly written in Go.
Every rank owns a partition of the graph and asks its peers for vertices
it does not own while cleaning the graph.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dKG",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dKG v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(taxon.TaxonCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (binary, json, gob, msgpack)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix, http)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
