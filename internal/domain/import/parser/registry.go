package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var ErrUnknownVendor = errors.New("unknown vendor")

// Constructor builds a fresh adapter.
type Constructor func() Adapter

// Entry is one registered vendor.
type Entry struct {
	ID  string
	New Constructor
}

// Registry maps vendor identifiers to adapter constructors and keeps
// registration order, which is also detection order.
type Registry struct {
	entries  []Entry
	adapters []Adapter
	index    map[string]int
}

// NewRegistry registers entries in the given order. Duplicate or empty
// identifiers are a programming error and panic.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		key := strings.ToUpper(e.ID)
		if key == "" {
			panic("parser: empty vendor id")
		}
		if _, dup := r.index[key]; dup {
			panic(fmt.Sprintf("parser: vendor %q registered twice", e.ID))
		}
		r.index[key] = len(r.entries)
		r.entries = append(r.entries, e)
		r.adapters = append(r.adapters, e.New())
	}
	return r
}

// DefaultRegistry holds every supported bank in detection order.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Entry{ID: "HSBC", New: NewHSBC},
		Entry{ID: "DBS", New: NewDBS},
		Entry{ID: "OCBC", New: NewOCBC},
		Entry{ID: "Citibank", New: NewCitibank},
		Entry{ID: "SCB", New: NewSCB},
		Entry{ID: "Trust", New: NewTrust},
		Entry{ID: "GXS", New: NewGXS},
	)
}

// IDs returns the vendor identifiers in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.entries))
	for i, e := range r.entries {
		ids[i] = e.ID
	}
	return ids
}

// Adapters returns the shared adapter instances in registration order.
// Adapters hold no mutable state and are safe for concurrent use.
func (r *Registry) Adapters() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Get looks up a vendor case-insensitively.
func (r *Registry) Get(id string) (Adapter, error) {
	i, ok := r.index[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		if s := r.Suggest(id); len(s) > 0 {
			return nil, fmt.Errorf("%w %q (did you mean %s?)", ErrUnknownVendor, id, strings.Join(s, ", "))
		}
		return nil, fmt.Errorf("%w %q", ErrUnknownVendor, id)
	}
	return r.adapters[i], nil
}

// New builds a fresh adapter for id.
func (r *Registry) New(id string) (Adapter, error) {
	i, ok := r.index[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownVendor, id)
	}
	return r.entries[i].New(), nil
}

// Suggest returns registered identifiers close to id, best first.
func (r *Registry) Suggest(id string) []string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	ids := r.IDs()

	type scored struct {
		id       string
		distance int
	}
	seen := make(map[string]bool)
	var out []scored

	for _, rank := range fuzzy.RankFindNormalizedFold(id, ids) {
		seen[rank.Target] = true
		out = append(out, scored{rank.Target, rank.Distance})
	}

	lower := strings.ToLower(id)
	for _, candidate := range ids {
		if seen[candidate] {
			continue
		}
		d := fuzzy.LevenshteinDistance(lower, strings.ToLower(candidate))
		if d <= maxSuggestDistance(candidate) {
			out = append(out, scored{candidate, d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].distance < out[j].distance })
	result := make([]string, len(out))
	for i, s := range out {
		result[i] = s.id
	}
	return result
}

func maxSuggestDistance(candidate string) int {
	if len(candidate) <= 4 {
		return 1
	}
	return 3
}

// SupportedBanksMessage is shown when no vendor matches a document.
func (r *Registry) SupportedBanksMessage() string {
	return "Unable to detect bank. Supported banks: " + strings.Join(r.IDs(), ", ")
}
