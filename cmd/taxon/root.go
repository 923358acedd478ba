package taxon

import (
	"fmt"
	"sort"

	"github.com/ValentinKolb/dKG/cmd/util"
	libTaxon "github.com/ValentinKolb/dKG/lib/taxon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// TaxonCmd reads a genome to taxon mapping file
	TaxonCmd = &cobra.Command{
		Use:   "taxon [file]",
		Short: "Inspect a genome to taxon mapping file",
		Long: `Reads a whitespace separated file of (accession, taxon id) pairs, e.g.

  GCF_000005845.2  562
  GCF_000006765.1  287

and prints the genome identifiers used by the graph store together with a per taxon summary.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: bindFlags,
		RunE:    run,
	}
)

func init() {
	key := "list"
	TaxonCmd.Flags().Bool(key, false, util.WrapString("Print every genome identifier with its taxon"))
	key = "top"
	TaxonCmd.Flags().Int(key, 10, util.WrapString("Number of taxa with the most genomes to print"))
}

func bindFlags(cmd *cobra.Command, _ []string) error {
	return util.BindCommandFlags(cmd)
}

func run(_ *cobra.Command, args []string) error {
	loader, err := libTaxon.Open(args[0])
	if err != nil {
		return err
	}
	defer loader.Close()

	list := viper.GetBool("list")
	genomesPerTaxon := make(map[uint64]int)
	genomes := make(map[uint64]struct{}, loader.Size())

	for loader.HasNext() {
		genome, taxonID, err := loader.Next()
		if err != nil {
			return err
		}
		genomesPerTaxon[taxonID]++
		genomes[genome] = struct{}{}
		if list {
			fmt.Printf("%016d\t%d\n", genome, taxonID)
		}
	}

	fmt.Printf("pairs:   %d\n", loader.Size())
	fmt.Printf("genomes: %d\n", len(genomes))
	fmt.Printf("taxa:    %d\n", len(genomesPerTaxon))
	if collisions := loader.Size() - len(genomes); collisions > 0 {
		fmt.Printf("warning: %d accessions share a genome identifier\n", collisions)
	}

	taxa := make([]uint64, 0, len(genomesPerTaxon))
	for id := range genomesPerTaxon {
		taxa = append(taxa, id)
	}
	sort.Slice(taxa, func(i, j int) bool {
		if genomesPerTaxon[taxa[i]] != genomesPerTaxon[taxa[j]] {
			return genomesPerTaxon[taxa[i]] > genomesPerTaxon[taxa[j]]
		}
		return taxa[i] < taxa[j]
	})

	top := viper.GetInt("top")
	if top > len(taxa) {
		top = len(taxa)
	}
	for _, id := range taxa[:max(top, 0)] {
		fmt.Printf("  taxon %-12d %d genomes\n", id, genomesPerTaxon[id])
	}
	return nil
}
