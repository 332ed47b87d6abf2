package compose

import (
	"fmt"
	"log/slog"

	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

// Request describes what a class needs resolved.
type Request struct {
	Pattern    Pattern
	BaseType   string // sphingoid base type, required when the pattern has B
	BaseLength int
}

// Selection is the representative multiset chosen for one group.
type Selection struct {
	Code  byte
	Tails []core.Tail
}

// Assembly is one representative candidate: a selection per group, in group
// order.
type Assembly struct {
	Pattern Pattern
	Groups  []Selection
}

// Slots returns the tails in pattern slot order. Each pattern position takes
// the next unused tail of its group, so "AOA" yields acyl, ether, acyl.
func (a Assembly) Slots() []core.Tail {
	queues := make(map[byte][]core.Tail, len(a.Groups))
	for _, g := range a.Groups {
		queues[g.Code] = g.Tails
	}

	slots := make([]core.Tail, 0, a.Pattern.SlotCount())
	for _, code := range a.Pattern.Slots() {
		q := queues[code]
		if len(q) == 0 {
			continue
		}
		slots = append(slots, q[0])
		queues[code] = q[1:]
	}
	return slots
}

// Flat returns the tails in group order.
func (a Assembly) Flat() []core.Tail {
	nested := make([][]core.Tail, 0, len(a.Groups))
	for _, g := range a.Groups {
		nested = append(nested, g.Tails)
	}
	return Flatten(nested)
}

// Resolver picks a representative tail combination for a pattern from
// per-type pools. A zero Resolver uses the built-in catalogs.
type Resolver struct {
	Pools  map[core.ChainType][]core.Tail
	Logger *slog.Logger
}

// NewResolver creates a resolver with the given pools. Types missing from
// pools fall back to core.DefaultPool.
func NewResolver(pools map[core.ChainType][]core.Tail, logger *slog.Logger) *Resolver {
	return &Resolver{Pools: pools, Logger: logger}
}

func (r *Resolver) pool(t core.ChainType) []core.Tail {
	if p := r.Pools[t]; len(p) > 0 {
		return p
	}
	return core.DefaultPool(t)
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

// candidates builds the axis of candidate multisets for one group.
func (r *Resolver) candidates(g Group, req Request) ([][]core.Tail, error) {
	t, _ := ChainType(g.Code)
	if t == core.Base {
		base, err := core.BaseTail(req.BaseType, req.BaseLength)
		if err != nil {
			return nil, err
		}
		tails := make([]core.Tail, g.Count)
		for i := range tails {
			tails[i] = base
		}
		return [][]core.Tail{tails}, nil
	}
	return Multisets(r.pool(t), g.Count), nil
}

// Resolve returns the representative assembly for req: the lexicographically
// first tuple of the cross-product of per-group candidates. The same request
// and pools always produce the same assembly.
func (r *Resolver) Resolve(req Request) (Assembly, error) {
	groups := req.Pattern.Groups()

	axes := make([][][]core.Tail, 0, len(groups))
	for _, g := range groups {
		cands, err := r.candidates(g, req)
		if err != nil {
			return Assembly{}, fmt.Errorf("resolve pattern %s: %w", req.Pattern, err)
		}
		axes = append(axes, cands)
	}

	asm := Assembly{Pattern: req.Pattern}
	CrossProduct(axes, func(tuple [][]core.Tail) bool {
		for i, tails := range tuple {
			asm.Groups = append(asm.Groups, Selection{Code: groups[i].Code, Tails: tails})
		}
		return false
	})

	r.logger().Debug("resolved pattern",
		"pattern", string(req.Pattern),
		"groups", len(groups),
		"slots", len(asm.Slots()))
	return asm, nil
}

// Count returns how many candidate assemblies the pattern's cross-product
// holds, without enumerating them.
func (r *Resolver) Count(p Pattern) int {
	total := 1
	for _, g := range p.Groups() {
		t, _ := ChainType(g.Code)
		if t == core.Base {
			continue
		}
		total *= MultisetCount(len(r.pool(t)), g.Count)
	}
	return total
}
