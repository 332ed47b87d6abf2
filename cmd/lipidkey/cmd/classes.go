package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List lipid classes and their adducts",
	Long: `List the classes of the active registry with their tail pattern, adducts and
the number of species the pattern can produce from the configured pools.

Pattern codes: A = acyl, O = alkyl ether, P = vinyl ether, B = sphingoid base.`,
	Args: cobra.NoArgs,
	RunE: runClasses,
}

func runClasses(cmd *cobra.Command, args []string) error {
	rows := make([][]string, 0, len(env.registry.Classes))
	for _, c := range env.registry.Classes {
		adducts := make([]string, 0, len(c.Adducts))
		for _, a := range c.Adducts {
			adducts = append(adducts, a.Name)
		}
		rows = append(rows, []string{
			c.Name,
			c.Description,
			string(c.Pattern),
			strings.Join(adducts, " "),
			strconv.Itoa(env.resolver.Count(c.Pattern)),
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Class", "Description", "Pattern", "Adducts", "Species"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
	return nil
}
