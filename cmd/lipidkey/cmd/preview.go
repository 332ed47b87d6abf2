package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/LipidKey/pkg/preview"
	"github.com/ChrisMcGann/LipidKey/pkg/synth"
)

var (
	// Flags for preview command
	previewClass    string
	previewAdduct   string
	previewEdits    []string
	previewCurve    bool
	previewIsotope  bool
	previewAsJSON   bool
	resolvingPower  float64
	samplingDensity float64
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the representative structure and spectrum of a class/adduct pair",
	Long: `Resolve the representative molecular species of a lipid class, predict its
fragment spectrum for one adduct and print the display bounds of the profile.

Intensity edits given with --set are applied in order before printing; each
edit rebuilds the preview from scratch. Fragments set to 0 stay listed but are
not generated on export.

Examples:
  # Preview PC protonated
  lipidkey preview --class PC --adduct "[M+H]+"

  # Lower the head group ion and print the broadened curve at R=10000
  lipidkey preview --class PC --adduct "[M+H]+" --set "HG 184=60" --curve --resolution 10000

  # Zoom onto the peaks and emit JSON
  lipidkey preview --class TG --adduct "[M+NH4]+" --isotope --json`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewClass, "class", "c", "", "Lipid class (required)")
	previewCmd.Flags().StringVarP(&previewAdduct, "adduct", "a", "", "Adduct, e.g. [M+H]+ (required)")
	previewCmd.Flags().StringArrayVar(&previewEdits, "set", nil, "Fragment intensity edit 'type=intensity' (repeatable)")
	previewCmd.Flags().BoolVar(&previewCurve, "curve", false, "Synthesize the resolution-broadened profile curve")
	previewCmd.Flags().BoolVar(&previewIsotope, "isotope", false, "Fit the x-range to the peaks (overrides config)")
	previewCmd.Flags().BoolVar(&previewAsJSON, "json", false, "Print the preview as JSON")
	previewCmd.Flags().Float64Var(&resolvingPower, "resolution", 0, "Resolving power for --curve (0 = config value)")
	previewCmd.Flags().Float64Var(&samplingDensity, "density", 0, "Sampling density for --curve (0 = config value)")

	previewCmd.MarkFlagRequired("class")
	previewCmd.MarkFlagRequired("adduct")
}

// fragmentEdit is one parsed --set value
type fragmentEdit struct {
	Type      string
	Intensity int
}

// parseEdit splits "type=intensity" on the last '='
func parseEdit(s string) (fragmentEdit, error) {
	idx := strings.LastIndex(s, "=")
	if idx <= 0 {
		return fragmentEdit{}, fmt.Errorf("invalid edit '%s', expected 'type=intensity'", s)
	}
	v, err := strconv.Atoi(strings.TrimSpace(s[idx+1:]))
	if err != nil {
		return fragmentEdit{}, fmt.Errorf("invalid intensity in edit '%s': %w", s, err)
	}
	return fragmentEdit{Type: strings.TrimSpace(s[:idx]), Intensity: v}, nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	edits := make([]fragmentEdit, 0, len(previewEdits))
	for _, s := range previewEdits {
		e, err := parseEdit(s)
		if err != nil {
			return err
		}
		edits = append(edits, e)
	}

	isotope := env.cfg.Preview.IsotopeMode
	if cmd.Flags().Changed("isotope") {
		isotope = previewIsotope
	}
	resolution := env.cfg.Preview.ResolvingPower
	if resolvingPower != 0 {
		resolution = resolvingPower
	}
	density := env.cfg.Preview.SamplingDensity
	if samplingDensity != 0 {
		density = samplingDensity
	}

	session := newSession(isotope)
	p, err := session.Select(previewClass, previewAdduct)
	if err != nil {
		return err
	}
	for _, e := range edits {
		if p, err = session.CommitEdit(e.Type, e.Intensity); err != nil {
			return err
		}
	}

	if previewCurve {
		if err := p.Profile.Synthesize(resolution, density); err != nil {
			return err
		}
		env.logger.Debug("profile synthesized", "points", len(p.Profile.Curve), "resolution", resolution, "density", density)
	}

	if previewAsJSON {
		return writePreviewJSON(cmd.OutOrStdout(), p)
	}
	writePreviewText(cmd.OutOrStdout(), p)
	return nil
}

type previewDoc struct {
	Class      string         `json:"class"`
	Adduct     string         `json:"adduct"`
	Name       string         `json:"name"`
	Formula    string         `json:"formula"`
	AdductMass float64        `json:"adduct_mass"`
	Charge     int            `json:"charge"`
	Candidates int            `json:"candidates"`
	Fragments  []fragmentJSON `json:"fragments"`
	BinMin     float64        `json:"bin_min"`
	BinMax     float64        `json:"bin_max"`
	Scale      synth.Scale    `json:"scale"`
	Curve      [][2]float64   `json:"curve,omitempty"`
}

type fragmentJSON struct {
	Type      string  `json:"type"`
	MZ        float64 `json:"mz"`
	Intensity int     `json:"intensity"`
	Generated bool    `json:"generated"`
	Comment   string  `json:"comment,omitempty"`
}

func writePreviewJSON(w io.Writer, p *preview.Preview) error {
	out := previewDoc{
		Class:      p.Selection.Class,
		Adduct:     p.Selection.Adduct,
		Name:       p.DisplayName,
		Formula:    p.Formula,
		AdductMass: p.AdductMass,
		Charge:     p.Charge,
		Candidates: p.Candidates,
		BinMin:     p.Profile.BinMin,
		BinMax:     p.Profile.BinMax,
		Scale:      synth.Autoscale(p.Profile.Peaks, p.Profile.BinMin, p.Profile.BinMax),
	}
	for _, f := range p.Fragments {
		out.Fragments = append(out.Fragments, fragmentJSON{
			Type:      f.Type,
			MZ:        f.MZ,
			Intensity: f.Intensity,
			Generated: f.Generated(),
			Comment:   f.Comment,
		})
	}
	for _, pt := range p.Profile.Curve {
		out.Curve = append(out.Curve, [2]float64{pt.MZ, pt.Amplitude})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writePreviewText(w io.Writer, p *preview.Preview) {
	fmt.Fprintf(w, "%s %s\n", p.DisplayName, p.Selection.Adduct)
	fmt.Fprintf(w, "Formula: %s\n", p.Formula)
	fmt.Fprintf(w, "m/z: %.4f (z=%d)\n", p.AdductMass, p.Charge)
	fmt.Fprintf(w, "Candidate species: %d\n\n", p.Candidates)

	rows := make([][]string, 0, len(p.Fragments))
	for _, f := range p.Fragments {
		generated := "yes"
		if !f.Generated() {
			generated = "no"
		}
		rows = append(rows, []string{f.Type, fmt.Sprintf("%.4f", f.MZ), strconv.Itoa(f.Intensity), generated, f.Comment})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Fragment", "m/z", "Intensity", "Generated", "Comment"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))

	scale := synth.Autoscale(p.Profile.Peaks, p.Profile.BinMin, p.Profile.BinMax)
	fmt.Fprintf(w, "\nx-range: %.4f .. %.4f\n", p.Profile.BinMin, p.Profile.BinMax)
	fmt.Fprintf(w, "y-max: %s\n", scale.FormatTick(scale.MaxY))

	if len(p.Profile.Curve) > 0 {
		fmt.Fprintf(w, "\n# profile (%d points)\n", len(p.Profile.Curve))
		for _, pt := range p.Profile.Curve {
			fmt.Fprintf(w, "%.6f\t%.3f\n", pt.MZ, pt.Amplitude)
		}
	}
}
