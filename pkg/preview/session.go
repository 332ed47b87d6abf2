// Package preview runs the resolve, assemble and synthesize pipeline for one
// lipid class/adduct pair and routes intensity edits back
// into the pair's fragment list.
package preview

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ChrisMcGann/LipidKey/pkg/assemble"
	"github.com/ChrisMcGann/LipidKey/pkg/compose"
	"github.com/ChrisMcGann/LipidKey/pkg/core"
	"github.com/ChrisMcGann/LipidKey/pkg/registry"
	"github.com/ChrisMcGann/LipidKey/pkg/synth"
)

var (
	// ErrIntensityRange is returned for edits outside 0..100.
	ErrIntensityRange = errors.New("intensity out of range")
	// ErrUnknownFragment is returned for edits to a type the adduct lacks.
	ErrUnknownFragment = errors.New("unknown fragment type")
)

// Selection identifies the active class/adduct pair.
type Selection struct {
	Class  string
	Adduct string
}

// Preview is the forward pipeline result handed to the view.
type Preview struct {
	Selection   Selection
	DisplayName string
	Formula     string
	Fragments   []core.FragmentEntry
	AdductMass  float64
	Charge      int
	Candidates  int // assemblies the pattern could produce from the pools
	Profile     *synth.Profile

	spectrum *core.Spectrum
}

// Options control how previews are displayed.
type Options struct {
	IsotopeMode bool
}

// Session holds the active selection. It is not safe for concurrent use: every
// call runs to completion before the next event is handled.
type Session struct {
	ID       string
	registry *registry.Registry
	resolver *compose.Resolver
	opts     Options
	logger   *slog.Logger

	selection *Selection
	current   *Preview
	listeners []func(*Preview)
}

// NewSession creates an idle session over reg.
func NewSession(reg *registry.Registry, resolver *compose.Resolver, opts Options, logger *slog.Logger) *Session {
	if resolver == nil {
		resolver = compose.NewResolver(nil, logger)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	id := uuid.NewString()
	return &Session{
		ID:       id,
		registry: reg,
		resolver: resolver,
		opts:     opts,
		logger:   logger.With("session", id),
	}
}

// OnChange registers fn to be called after every successful rebuild.
func (s *Session) OnChange(fn func(*Preview)) {
	s.listeners = append(s.listeners, fn)
}

// Current returns the last built preview, or nil when idle.
func (s *Session) Current() *Preview {
	return s.current
}

// Selection returns the active selection, or nil when idle.
func (s *Session) Selection() *Selection {
	if s.selection == nil {
		return nil
	}
	sel := *s.selection
	return &sel
}

// Select makes class/adduct the active pair and builds its preview. The
// previous selection is kept when the build fails.
func (s *Session) Select(className, adductName string) (*Preview, error) {
	sel := Selection{Class: className, Adduct: adductName}
	p, err := s.build(sel)
	if err != nil {
		return nil, err
	}
	s.selection = &sel
	s.publish(p)
	return p, nil
}

// Clear drops the active selection; the session becomes idle.
func (s *Session) Clear() {
	s.selection = nil
	s.current = nil
}

// Rebuild reruns the pipeline for the active selection. It is a no-op
// returning nil when idle.
func (s *Session) Rebuild() (*Preview, error) {
	if s.selection == nil {
		return nil, nil
	}
	p, err := s.build(*s.selection)
	if err != nil {
		return nil, err
	}
	s.publish(p)
	return p, nil
}

// CommitEdit writes intensity for fragmentType into the selected adduct's
// fragment list and rebuilds the preview from scratch. Without a selection it
// does nothing and returns nil.
func (s *Session) CommitEdit(fragmentType string, intensity int) (*Preview, error) {
	if s.selection == nil {
		return nil, nil
	}
	if !core.ValidIntensity(intensity) {
		return nil, fmt.Errorf("%s = %d: %w", fragmentType, intensity, ErrIntensityRange)
	}

	_, adduct, err := s.lookup(*s.selection)
	if err != nil {
		return nil, err
	}
	if _, ok := adduct.Fragment(fragmentType); !ok {
		return nil, fmt.Errorf("%s for %s %s: %w", fragmentType, s.selection.Class, adduct.Name, ErrUnknownFragment)
	}

	previous := adduct.Intensities[fragmentType]
	adduct.Intensities[fragmentType] = intensity
	s.logger.Debug("fragment intensity edited",
		"class", s.selection.Class,
		"adduct", adduct.Name,
		"fragment", fragmentType,
		"from", previous,
		"to", intensity)

	return s.Rebuild()
}

func (s *Session) lookup(sel Selection) (*registry.Class, *registry.Adduct, error) {
	class, err := s.registry.Class(sel.Class)
	if err != nil {
		return nil, nil, err
	}
	adduct, err := class.Adduct(sel.Adduct)
	if err != nil {
		return nil, nil, err
	}
	return class, adduct, nil
}

// build runs the forward pipeline. It reads session state but never writes
// it, so calling it again for the same selection yields the same preview.
func (s *Session) build(sel Selection) (*Preview, error) {
	class, _, err := s.lookup(sel)
	if err != nil {
		return nil, err
	}

	asm, err := s.resolver.Resolve(class.Request())
	if err != nil {
		return nil, err
	}

	res, err := assemble.Build(class, asm, sel.Adduct)
	if err != nil {
		return nil, err
	}

	spec := res.Spectrum()
	p := &Preview{
		Selection:   sel,
		DisplayName: res.DisplayName(),
		Formula:     spec.Formula,
		Fragments:   res.Fragments,
		AdductMass:  res.AdductMass,
		Charge:      spec.Charge,
		Candidates:  s.resolver.Count(class.Pattern),
		Profile:     synth.NewProfile(spec.Peaks, res.AdductMass, s.opts.IsotopeMode),
		spectrum:    spec,
	}

	s.logger.Debug("preview built",
		"class", sel.Class,
		"adduct", sel.Adduct,
		"name", p.DisplayName,
		"fragments", len(p.Fragments),
		"adduct_mass", p.AdductMass)
	return p, nil
}

func (s *Session) publish(p *Preview) {
	s.current = p
	for _, fn := range s.listeners {
		fn(p)
	}
}

// Spectrum returns a copy of the preview's spectrum, coincident fragments
// merged and zero intensities included.
func (p *Preview) Spectrum() *core.Spectrum {
	spec := *p.spectrum
	spec.Peaks = append([]core.Peak(nil), p.spectrum.Peaks...)
	return &spec
}

// Fragment returns the entry for fragmentType.
func (p *Preview) Fragment(fragmentType string) (core.FragmentEntry, bool) {
	for _, f := range p.Fragments {
		if f.Type == fragmentType {
			return f, true
		}
	}
	return core.FragmentEntry{}, false
}
