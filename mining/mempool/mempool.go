// Package mempool realizes the MempoolView component (spec.md §4.5): a
// read-only, ancestor-fee-score-ordered view over pending transactions
// that the block assembler iterates without knowing anything about how
// the pool itself admits or evicts entries.
//
// Grounded on the teacher's mining.TxSource/TxDesc split (mining/
// mining.go): a narrow read interface the assembler consumes, here
// generalized from a flat fee-ordered descriptor list to ancestor-aware
// scoring, per DESIGN NOTES §9's "Boost multi-index -> ordered-index
// container" guidance. The reference implementation below indexes
// entries with github.com/google/btree rather than hand-rolling a
// balanced tree, since no pack example needs mempool-style ancestor
// scoring itself but several (teranode, lnd) already carry the
// dependency.
package mempool

import (
	"github.com/google/btree"

	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/wire"
)

// Entry is a single pending transaction as the assembler sees it: its
// own cost, its ancestor-inclusive package cost, and its in-mempool
// ancestor/descendant set, per spec.md §4.5.
type Entry interface {
	Tx() *wire.MsgTx
	ID() chainhash.Hash
	Size() int64
	Fee() int64
	SigOpCost() int64

	// AncestorSize, AncestorFees and AncestorScore total this entry and
	// every unconfirmed ancestor of it: AncestorScore is
	// AncestorFees/AncestorSize, the package-fee-rate figure spec.md
	// §4.6a's selection loop orders candidates by.
	AncestorSize() int64
	AncestorFees() int64
	AncestorScore() float64

	// Ancestors and Descendants enumerate this entry's in-mempool
	// unconfirmed parents/children, the dependency graph §4.6a's
	// descendant-update step walks.
	Ancestors() []Entry
	Descendants() []Entry
}

// Iterator exposes the primary ancestor-score-ordered walk spec.md
// §4.6a's package-selection loop advances over, skipping nothing itself
// — callers filter already-handled entries (in_block/modified_set/
// failed_set) on their own side.
type Iterator interface {
	// Next returns the next-highest-AncestorScore entry not yet visited,
	// ties broken by Entry.ID for a deterministic total order, or
	// ok=false once every entry has been visited.
	Next() (Entry, bool)
}

// View is the read-only abstraction C6 (the block assembler) consumes.
// The pool itself — admission policy, eviction, concurrent mutation — is
// an external collaborator; View only promises a stable snapshot across
// one NewIterator() walk, per spec.md §4.5/§9's locking note.
type View interface {
	NewIterator() Iterator
	Lookup(id chainhash.Hash) (Entry, bool)
}

// scoreItem is the btree.Item this package's reference Pool indexes
// entries by. Less is defined so that higher AncestorScore sorts first
// (Min() on the underlying tree yields the best candidate), with ID as
// the deterministic tiebreak spec.md §4.6a step 2 requires.
type scoreItem struct {
	score float64
	id    chainhash.Hash
}

func (a scoreItem) Less(than btree.Item) bool {
	b := than.(scoreItem)
	if a.score != b.score {
		return a.score > b.score
	}
	return lessHash(a.id, b.id)
}

func lessHash(a, b chainhash.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// poolEntry is the reference Entry implementation backing Pool.
type poolEntry struct {
	tx        *wire.MsgTx
	id        chainhash.Hash
	size      int64
	fee       int64
	sigOpCost int64

	parents  []chainhash.Hash
	children []chainhash.Hash

	pool *Pool
}

func (e *poolEntry) Tx() *wire.MsgTx  { return e.tx }
func (e *poolEntry) ID() chainhash.Hash { return e.id }
func (e *poolEntry) Size() int64      { return e.size }
func (e *poolEntry) Fee() int64       { return e.fee }
func (e *poolEntry) SigOpCost() int64 { return e.sigOpCost }

func (e *poolEntry) Ancestors() []Entry {
	seen := map[chainhash.Hash]bool{e.id: true}
	var result []Entry
	var walk func(id chainhash.Hash)
	walk = func(id chainhash.Hash) {
		parent, ok := e.pool.entries[id]
		if !ok {
			return
		}
		for _, p := range parent.parents {
			if seen[p] {
				continue
			}
			seen[p] = true
			if ancestor, ok := e.pool.entries[p]; ok {
				result = append(result, ancestor)
			}
			walk(p)
		}
	}
	walk(e.id)
	return result
}

func (e *poolEntry) Descendants() []Entry {
	seen := map[chainhash.Hash]bool{e.id: true}
	var result []Entry
	var walk func(id chainhash.Hash)
	walk = func(id chainhash.Hash) {
		entry, ok := e.pool.entries[id]
		if !ok {
			return
		}
		for _, c := range entry.children {
			if seen[c] {
				continue
			}
			seen[c] = true
			if descendant, ok := e.pool.entries[c]; ok {
				result = append(result, descendant)
			}
			walk(c)
		}
	}
	walk(e.id)
	return result
}

func (e *poolEntry) AncestorSize() int64 {
	total := e.size
	for _, a := range e.Ancestors() {
		total += a.Size()
	}
	return total
}

func (e *poolEntry) AncestorFees() int64 {
	total := e.fee
	for _, a := range e.Ancestors() {
		total += a.Fee()
	}
	return total
}

func (e *poolEntry) AncestorScore() float64 {
	size := e.AncestorSize()
	if size <= 0 {
		return 0
	}
	return float64(e.AncestorFees()) / float64(size)
}

// Pool is a reference, entirely in-memory View implementation: a map of
// entries plus a btree.BTree keyed by ancestor score for ordered
// iteration. It exists for tests and for a minimal standalone staker;
// the real mempool (an external collaborator per spec.md §4.5) can
// implement View on its own terms.
type Pool struct {
	entries map[chainhash.Hash]*poolEntry
	scores  *btree.BTree
}

// NewPool returns an empty reference pool.
func NewPool() *Pool {
	return &Pool{
		entries: make(map[chainhash.Hash]*poolEntry),
		scores:  btree.New(32),
	}
}

// Add inserts tx into the pool with parents naming its in-mempool
// unconfirmed ancestors (inputs spending other pool entries).
func (p *Pool) Add(tx *wire.MsgTx, fee int64, sigOpCost int64, parents []chainhash.Hash) Entry {
	id := tx.TxHash()
	entry := &poolEntry{
		tx:        tx,
		id:        id,
		size:      int64(txSize(tx)),
		fee:       fee,
		sigOpCost: sigOpCost,
		parents:   append([]chainhash.Hash(nil), parents...),
		pool:      p,
	}
	p.entries[id] = entry
	for _, parentID := range parents {
		if parent, ok := p.entries[parentID]; ok {
			parent.children = append(parent.children, id)
		}
	}
	p.reindex()
	log.Debugf("accepted %s into mempool (%d parents, fee %d)", id, len(parents), fee)
	return entry
}

// Remove deletes id from the pool (e.g. once the assembler has placed it
// in a block template), leaving its former children's parent lists
// intact — a confirmed ancestor is simply absent from Lookup, which is
// exactly how Ancestors' graph walk already treats blocks' own txs.
func (p *Pool) Remove(id chainhash.Hash) {
	delete(p.entries, id)
	p.reindex()
}

func (p *Pool) reindex() {
	p.scores = btree.New(32)
	for id, entry := range p.entries {
		p.scores.ReplaceOrInsert(scoreItem{score: entry.AncestorScore(), id: id})
	}
}

// Lookup implements View.
func (p *Pool) Lookup(id chainhash.Hash) (Entry, bool) {
	e, ok := p.entries[id]
	return e, ok
}

// NewIterator implements View: a snapshot copy of the current score
// order, stable across the walk per spec.md §4.5's "no additions or
// removals visible mid-assembly" invariant.
func (p *Pool) NewIterator() Iterator {
	order := make([]chainhash.Hash, 0, p.scores.Len())
	p.scores.Ascend(func(item btree.Item) bool {
		order = append(order, item.(scoreItem).id)
		return true
	})
	snapshot := make(map[chainhash.Hash]Entry, len(p.entries))
	for id, e := range p.entries {
		snapshot[id] = e
	}
	return &poolIterator{order: order, entries: snapshot}
}

type poolIterator struct {
	order   []chainhash.Hash
	entries map[chainhash.Hash]Entry
	pos     int
}

func (it *poolIterator) Next() (Entry, bool) {
	for it.pos < len(it.order) {
		id := it.order[it.pos]
		it.pos++
		if e, ok := it.entries[id]; ok {
			return e, true
		}
	}
	return nil, false
}

// txSize is the serialized byte length of tx, used as the reference
// pool's notion of "size" for fee-rate purposes (no witness discount:
// spec.md's Non-goals exclude a weight/vsize policy layer).
func txSize(tx *wire.MsgTx) int {
	return tx.SerializeSize()
}
