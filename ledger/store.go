package ledger

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/bitfsorg/stakepool-go/identity"
)

// Store persists ledger state. Update runs fn in a single read-write
// transaction: a non-nil error from fn discards every write made through tx.
// Implementations serialize Update calls.
type Store interface {
	View(fn func(tx Tx) error) error
	Update(fn func(tx Tx) error) error
	Close() error
}

// Tx is the transactional view over the pool, positions, accounts, journal
// and record log. Values returned are copies; write them back with Put*.
type Tx interface {
	// Pool returns the pool or ErrPoolNotFound.
	Pool() (*Pool, error)
	PutPool(p *Pool) error

	// Position returns the owner's position and whether it exists.
	Position(owner identity.Address) (*StakePosition, bool, error)
	PutPosition(p *StakePosition) error
	// Positions returns all positions ordered by owner.
	Positions() ([]*StakePosition, error)

	// Account returns the owner's account, zero-valued if never written.
	Account(owner identity.Address) (*Account, error)
	PutAccount(a *Account) error
	// Accounts returns all accounts ordered by owner.
	Accounts() ([]*Account, error)

	// NextMark returns the next value of a strictly increasing sequence.
	NextMark() (uint64, error)

	AppendEvent(e *Event) error
	// Events returns the journal ordered by mark.
	Events() ([]*Event, error)

	AppendRecord(r *Record) error
	// Records returns accepted records ordered by mark then index.
	Records() ([]*Record, error)
}

// MemStore is an in-memory Store for tests and embedding.
type MemStore struct {
	mu    sync.RWMutex
	state *memState
}

type memState struct {
	pool      *Pool
	positions map[identity.Address]*StakePosition
	accounts  map[identity.Address]*Account
	events    []*Event
	records   []*Record
	mark      uint64
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{state: &memState{
		positions: make(map[identity.Address]*StakePosition),
		accounts:  make(map[identity.Address]*Account),
	}}
}

// View runs fn against the current state.
func (s *MemStore) View(fn func(tx Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTx{st: s.state})
}

// Update runs fn against a working copy and installs it only if fn succeeds.
func (s *MemStore) Update(fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.copy()
	if err := fn(&memTx{st: work, writable: true}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }

func (m *memState) copy() *memState {
	c := &memState{
		positions: make(map[identity.Address]*StakePosition, len(m.positions)),
		accounts:  make(map[identity.Address]*Account, len(m.accounts)),
		events:    make([]*Event, len(m.events)),
		records:   make([]*Record, len(m.records)),
		mark:      m.mark,
	}
	if m.pool != nil {
		c.pool = m.pool.clone()
	}
	for k, v := range m.positions {
		c.positions[k] = v.clone()
	}
	for k, v := range m.accounts {
		c.accounts[k] = v.clone()
	}
	// Journal entries are immutable once appended.
	copy(c.events, m.events)
	copy(c.records, m.records)
	return c
}

type memTx struct {
	st       *memState
	writable bool
}

func (t *memTx) checkWritable() error {
	if !t.writable {
		return ErrReadOnlyTx
	}
	return nil
}

func (t *memTx) Pool() (*Pool, error) {
	if t.st.pool == nil {
		return nil, ErrPoolNotFound
	}
	return t.st.pool.clone(), nil
}

func (t *memTx) PutPool(p *Pool) error {
	if p == nil {
		return fmt.Errorf("%w: pool", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.st.pool = p.clone()
	return nil
}

func (t *memTx) Position(owner identity.Address) (*StakePosition, bool, error) {
	p, ok := t.st.positions[owner]
	if !ok {
		return nil, false, nil
	}
	return p.clone(), true, nil
}

func (t *memTx) PutPosition(p *StakePosition) error {
	if p == nil {
		return fmt.Errorf("%w: position", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.st.positions[p.Owner] = p.clone()
	return nil
}

func (t *memTx) Positions() ([]*StakePosition, error) {
	out := make([]*StakePosition, 0, len(t.st.positions))
	for _, p := range t.st.positions {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Owner[:], out[j].Owner[:]) < 0
	})
	return out, nil
}

func (t *memTx) Account(owner identity.Address) (*Account, error) {
	a, ok := t.st.accounts[owner]
	if !ok {
		return &Account{Owner: owner}, nil
	}
	return a.clone(), nil
}

func (t *memTx) PutAccount(a *Account) error {
	if a == nil {
		return fmt.Errorf("%w: account", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.st.accounts[a.Owner] = a.clone()
	return nil
}

func (t *memTx) Accounts() ([]*Account, error) {
	out := make([]*Account, 0, len(t.st.accounts))
	for _, a := range t.st.accounts {
		out = append(out, a.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Owner[:], out[j].Owner[:]) < 0
	})
	return out, nil
}

func (t *memTx) NextMark() (uint64, error) {
	if err := t.checkWritable(); err != nil {
		return 0, err
	}
	t.st.mark++
	return t.st.mark, nil
}

func (t *memTx) AppendEvent(e *Event) error {
	if e == nil {
		return fmt.Errorf("%w: event", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	c := *e
	t.st.events = append(t.st.events, &c)
	return nil
}

func (t *memTx) Events() ([]*Event, error) {
	out := make([]*Event, len(t.st.events))
	for i, e := range t.st.events {
		c := *e
		out[i] = &c
	}
	return out, nil
}

func (t *memTx) AppendRecord(r *Record) error {
	if r == nil {
		return fmt.Errorf("%w: record", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	c := *r
	t.st.records = append(t.st.records, &c)
	return nil
}

func (t *memTx) Records() ([]*Record, error) {
	out := make([]*Record, len(t.st.records))
	for i, r := range t.st.records {
		c := *r
		out[i] = &c
	}
	return out, nil
}
