package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apisim/apisim/pkg/store"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show available simulations and their seeded collections",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(_ *cobra.Command, _ []string) error {
	for i, name := range simNames {
		if i > 0 {
			fmt.Println()
		}
		s, err := newSimStore(name)
		if err != nil {
			return err
		}
		fmt.Printf("%s:\n", name)
		printCollections(s)
	}
	return nil
}

func printCollections(s *store.Store) {
	for _, collection := range s.Collections() {
		fmt.Printf("  %-24s %d records\n", collection, s.Len(collection))
	}
}
