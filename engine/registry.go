package engine

import (
	"sort"
	"sync"

	"github.com/xrash/smetrics"
)

// Group classifies builtins for help output.
type Group int

const (
	GroupColumn Group = iota
	GroupString
	GroupSequence
	GroupNumber
	GroupRow
)

func (g Group) String() string {
	switch g {
	case GroupColumn:
		return "column"
	case GroupString:
		return "string"
	case GroupSequence:
		return "sequence"
	case GroupNumber:
		return "number"
	default:
		return "row"
	}
}

// Variadic marks a builtin without an upper argument bound.
const Variadic = -1

// Builtin describes a function callable from a filterx expression.
type Builtin struct {
	Name    string
	Aliases []string
	Group   Group
	// Expression marks builtins that may run inside print templates.
	Expression bool
	// Inplace marks builtins accepting the trailing-underscore form, which
	// replaces the argument column instead of returning a value.
	Inplace bool
	MinArgs int
	MaxArgs int
	Doc     string

	fn func(vm *VM, inv *invocation) (Value, error)
}

// Registry holds builtins by name and alias. Lookups are case-sensitive.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*Builtin
	builtins []*Builtin
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Builtin)}
}

// Register adds b under its name and aliases, replacing earlier entries.
func (r *Registry) Register(b *Builtin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[b.Name] = b
	for _, a := range b.Aliases {
		r.byName[a] = b
	}
	r.builtins = append(r.builtins, b)
}

func (r *Registry) Get(name string) (*Builtin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byName[name]
	return b, ok
}

// List returns every builtin once, ordered by group then name.
func (r *Registry) List() []*Builtin {
	r.mu.RLock()
	out := make([]*Builtin, len(r.builtins))
	copy(out, r.builtins)
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Suggest returns the registered name most similar to name, or "" when
// nothing scores at least 0.6 by Jaro-Winkler similarity.
func (r *Registry) Suggest(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	best, score := "", 0.6
	for candidate := range r.byName {
		s := smetrics.JaroWinkler(name, candidate, 0.7, 4)
		if s > score || (s == score && best != "" && candidate < best) || (s == score && best == "") {
			best, score = candidate, s
		}
	}
	return best
}

var builtins = NewRegistry()

// Builtins returns the registry used by every VM.
func Builtins() *Registry { return builtins }

func init() {
	for _, group := range [][]*Builtin{
		columnBuiltins(),
		stringBuiltins(),
		sequenceBuiltins(),
		rowBuiltins(),
	} {
		for _, b := range group {
			builtins.Register(b)
		}
	}
}
