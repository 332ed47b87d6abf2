package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/LipidKey/pkg/core"
	"github.com/ChrisMcGann/LipidKey/pkg/filter"
	"github.com/ChrisMcGann/LipidKey/pkg/reader/msp"
	"github.com/ChrisMcGann/LipidKey/pkg/synth"
)

var (
	// Flags for compare command
	compareClass  string
	compareAdduct string
	referenceFile string
	referenceName string
	tolerancePPM  float64
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a predicted spectrum against an MSP reference",
	Long: `Match the generated fragments of a class/adduct preview against a reference
spectrum read from an MSP library and report the cosine similarity.

The reference entry is chosen by --name; otherwise the first entry with the
same precursor type is used.

Example:
  lipidkey compare --class PC --adduct "[M+H]+" --ref standards.msp --name "PC 16:0_16:0"`,
	Args: cobra.NoArgs,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&compareClass, "class", "c", "", "Lipid class (required)")
	compareCmd.Flags().StringVarP(&compareAdduct, "adduct", "a", "", "Adduct (required)")
	compareCmd.Flags().StringVar(&referenceFile, "ref", "", "Reference MSP file (required)")
	compareCmd.Flags().StringVar(&referenceName, "name", "", "Name of the reference entry")
	compareCmd.Flags().Float64Var(&tolerancePPM, "tolerance", 10, "Match tolerance in ppm")

	compareCmd.MarkFlagRequired("class")
	compareCmd.MarkFlagRequired("adduct")
	compareCmd.MarkFlagRequired("ref")
}

func runCompare(cmd *cobra.Command, args []string) error {
	if tolerancePPM <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", tolerancePPM)
	}

	p, err := newSession(false).Select(compareClass, compareAdduct)
	if err != nil {
		return err
	}

	ref, err := findReference(referenceFile, referenceName, compareAdduct)
	if err != nil {
		return err
	}

	predicted := p.Spectrum()
	filter.RemoveZeroIntensityPeaks(predicted)
	cmp := synth.Compare(predicted.Peaks, ref.Peaks, tolerancePPM)

	rows := make([][]string, 0, len(cmp.Matches))
	for _, m := range cmp.Matches {
		refMZ, errPPM := "-", "-"
		if m.Matched {
			refMZ = fmt.Sprintf("%.4f", m.Reference.MZ)
			errPPM = fmt.Sprintf("%+.1f", m.ErrorPPM)
		}
		rows = append(rows, []string{m.Predicted.Annotation, fmt.Sprintf("%.4f", m.Predicted.MZ), refMZ, errPPM})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s vs %s\n\n", p.DisplayName, p.Selection.Adduct, ref.Label())
	fmt.Fprintln(out, renderTable(
		[]string{"Fragment", "Predicted", "Reference", "ppm"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(out, "\nMatched: %d/%d\n", cmp.MatchedCount(), len(cmp.Matches))
	fmt.Fprintf(out, "Cosine: %.4f\n", cmp.Cosine)
	return nil
}

// findReference returns the entry called name, or the first entry of the
// given precursor type when name is empty
func findReference(path, name, precursorType string) (*core.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file: %w", err)
	}
	defer f.Close()

	reader := msp.NewReader(f)
	for reader.Next() {
		spec := reader.Spectrum()
		if name != "" && spec.Name == name {
			return spec, nil
		}
		if name == "" && spec.PrecursorType == precursorType {
			return spec, nil
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("error reading reference file: %w", err)
	}

	if name != "" {
		return nil, fmt.Errorf("reference %q not found in %s", name, path)
	}
	return nil, fmt.Errorf("no %s reference in %s", precursorType, path)
}
