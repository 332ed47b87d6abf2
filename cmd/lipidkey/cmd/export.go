package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/LipidKey/pkg/filter"
	"github.com/ChrisMcGann/LipidKey/pkg/registry"
	"github.com/ChrisMcGann/LipidKey/pkg/writer/sqlite"
)

var (
	// Flags for export command
	outputFile    string
	exportClasses []string
	exportAdducts []string
	topN          int
	cutoffPercent float64
	fragmentTypes string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export predicted spectra to an SQLite library",
	Long: `Build the preview of every selected class/adduct pair and write the generated
spectra to an SQLite database compatible with RTLS and mzVault workflows.

Fragments with intensity 0 are never written. Without --class every class of
the registry is exported; without --adduct every adduct of each class.

Examples:
  # Export the whole registry
  lipidkey export --out lipids.db

  # Export PC and PE, keeping the 5 most intense peaks above 2%
  lipidkey export --out pc_pe.db --class PC,PE --top-n 5 --cutoff 2`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output database file (required)")
	exportCmd.Flags().StringSliceVar(&exportClasses, "class", nil, "Classes to export (default: all)")
	exportCmd.Flags().StringSliceVar(&exportAdducts, "adduct", nil, "Adducts to export (default: all of each class)")
	exportCmd.Flags().IntVar(&topN, "top-n", 0, "Keep only top N most intense peaks (0 = config value)")
	exportCmd.Flags().Float64Var(&cutoffPercent, "cutoff", 0, "Intensity cutoff as % of base peak (0 = config value)")
	exportCmd.Flags().StringVar(&fragmentTypes, "fragment-types", "", "Comma-separated fragment type prefixes to keep (e.g. 'HG,FA')")

	exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(outputFile); err == nil {
		return fmt.Errorf("output file already exists: %s", outputFile)
	}

	classes, err := selectClasses(exportClasses)
	if err != nil {
		return err
	}

	filterConfig := &filter.Config{
		TopN:            env.cfg.Export.TopN,
		IntensityCutoff: env.cfg.Export.Cutoff,
	}
	if topN > 0 {
		filterConfig.TopN = topN
	}
	if cutoffPercent > 0 {
		filterConfig.IntensityCutoff = cutoffPercent
	}
	if fragmentTypes != "" {
		for _, t := range strings.Split(fragmentTypes, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filterConfig.FragmentTypes = append(filterConfig.FragmentTypes, t)
			}
		}
	}

	session := newSession(false)
	writer, err := sqlite.NewWriter(outputFile, sqlite.Options{
		Tag:         "lipidkey:" + session.ID,
		Description: "LipidKey predicted lipid spectra",
	})
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Exporting %d classes to %s...\n", len(classes), outputFile)

	skipped := 0
	for _, class := range classes {
		for _, adduct := range class.Adducts {
			if !wanted(adduct.Name, exportAdducts) {
				continue
			}

			p, err := session.Select(class.Name, adduct.Name)
			if err != nil {
				writer.Close()
				return err
			}

			spec := p.Spectrum()
			filterConfig.Apply(spec)
			if len(spec.Peaks) == 0 {
				env.logger.Warn("no generated peaks, skipping", "class", class.Name, "adduct", adduct.Name)
				skipped++
				continue
			}

			if err := writer.WriteSpectrum(spec); err != nil {
				writer.Close()
				return fmt.Errorf("failed to write spectrum %s %s: %w", spec.Name, spec.PrecursorType, err)
			}
			env.logger.Debug("spectrum written", "name", spec.Name, "adduct", spec.PrecursorType, "peaks", len(spec.Peaks))
		}
	}

	count := writer.Count()
	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}

	fmt.Fprintf(out, "\nExport complete!\n")
	fmt.Fprintf(out, "Written: %d spectra\n", count)
	if skipped > 0 {
		fmt.Fprintf(out, "Skipped: %d spectra (no generated peaks)\n", skipped)
	}
	fmt.Fprintf(out, "Output: %s\n", outputFile)
	return nil
}

// selectClasses resolves class names, keeping registry order when none are given
func selectClasses(names []string) ([]*registry.Class, error) {
	if len(names) == 0 {
		return env.registry.Classes, nil
	}
	classes := make([]*registry.Class, 0, len(names))
	var errs []error
	for _, name := range names {
		c, err := env.registry.Class(strings.TrimSpace(name))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		classes = append(classes, c)
	}
	return classes, errors.Join(errs...)
}

func wanted(name string, names []string) bool {
	if len(names) == 0 {
		return true
	}
	for _, f := range names {
		if strings.TrimSpace(f) == name {
			return true
		}
	}
	return false
}
