// Package mark implements the symbol-equivalence structure used to unify
// bindings across modules during linking. A Mark is an opaque per-identifier
// token; two marks that must ultimately render under the same name are
// joined with Union, and Find returns the canonical representative of a
// mark's class.
//
// The design mirrors the Ref/Symbol.Link scheme in esbuild's linker: rather
// than storing a parent index and rank, each mark stores a "link" to another
// mark. Find walks and compresses the link chain; Union splices one chain
// onto the end of the other. This is a textbook path-compression union-find,
// just expressed as a chain of links instead of a parent array, which keeps
// it friendly to growing the underlying slice concurrently.
package mark

import "sync"

// Mark is an opaque identifier token. The zero value is never issued by
// Box.New and can be used as a sentinel for "no mark".
type Mark uint32

// Box is the symbol-equivalence structure (SymbolBox). It is safe for
// concurrent use from many goroutines during graph construction (New and
// Union take the lock); Find is also safe concurrently, but callers that
// need amortised near-constant behaviour should prefer running Find
// single-threaded after construction finishes, same as esbuild's
// FollowAllSymbols does before the single-threaded linker pass.
type Box struct {
	mu    sync.Mutex
	links []Mark // links[m-1] == m means m is its own root; otherwise a chain
	names []string
}

const invalid Mark = 0

// NewBox creates an empty symbol-equivalence structure.
func NewBox() *Box {
	return &Box{}
}

// New mints a fresh, globally unique mark carrying a debug name (typically
// the declared identifier's spelling; used only for diagnostics and as a
// renaming seed, never for equality).
func (b *Box) New(name string) Mark {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := len(b.links)
	m := Mark(idx + 1)
	b.links = append(b.links, m) // self-link: m is its own root
	b.names = append(b.names, name)
	return m
}

// Name returns the debug name a mark was minted with.
func (b *Box) Name(m Mark) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.names[m.index()]
}

func (m Mark) index() int { return int(m) - 1 }

// Find returns the canonical representative of m's class, compressing the
// chain it walks along the way.
func (b *Box) Find(m Mark) Mark {
	if m == invalid {
		return invalid
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.find(m)
}

// find must be called with b.mu held.
func (b *Box) find(m Mark) Mark {
	link := b.links[m.index()]
	if link == m {
		return m
	}
	root := b.find(link)
	b.links[m.index()] = root // path compression
	return root
}

// Union merges the classes of a and b so that Find(a) == Find(b) for the
// rest of the run. Union is commutative: Union(a, b) and Union(b, a) have
// the same observable effect. The root of other's chain is made to point at
// the root of a's chain; which side "wins" as the representative is otherwise
// unspecified and must not be relied on for anything but equality.
func (b *Box) Union(a, other Mark) Mark {
	if a == invalid || other == invalid || a == other {
		if other != invalid {
			return b.Find(other)
		}
		return b.Find(a)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	rootA := b.find(a)
	rootB := b.find(other)
	if rootA == rootB {
		return rootA
	}
	b.links[rootB.index()] = rootA
	return rootA
}

// Valid reports whether m was actually minted by this box (as opposed to
// being the zero Mark used as a sentinel).
func (m Mark) Valid() bool { return m != invalid }
