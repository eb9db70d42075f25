package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"wallet-account-picker/internal/account"
)

// ErrUnknownAccount is returned when an index or address matches no record
var ErrUnknownAccount = errors.New("unknown account")

// Store is the in-process background state: the keyring's account list,
// the selected address and the account tracker balances
type Store struct {
	mu        sync.RWMutex
	records   []account.Record
	selected  string
	accounts  map[string]account.Info
	updatedAt time.Time

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]account.Info),
		subs:     make(map[int]chan struct{}),
	}
}

// Snapshot returns a copy of the selected address and tracker entries
func (s *Store) Snapshot() account.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make(map[string]account.Info, len(s.accounts))
	for addr, info := range s.accounts {
		accounts[addr] = copyInfo(info)
	}
	return account.Snapshot{SelectedAddress: s.selected, Accounts: accounts}
}

// Records returns the account list in display order.
// Index and IsSelected are derived here, never stored.
func (s *Store) Records() []account.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]account.Record, len(s.records))
	for i, r := range s.records {
		r.Index = i
		r.IsSelected = r.Address == s.selected
		out[i] = r
	}
	return out
}

// UpdatedAt is the time of the last mutation
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Hydrate replaces the whole state, used when loading from storage
func (s *Store) Hydrate(records []account.Record, selected string, balances map[string]string) error {
	for _, r := range records {
		if err := account.Validate(r); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.records = append([]account.Record(nil), records...)
	s.selected = selected
	s.accounts = make(map[string]account.Info, len(balances))
	for addr, wei := range balances {
		wei := wei
		s.accounts[addr] = account.Info{Balance: &wei}
	}
	s.touch()
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) upsertLocked(rec account.Record) {
	for i := range s.records {
		if s.records[i].Address == rec.Address {
			s.records[i] = rec
			return
		}
	}
	s.records = append(s.records, rec)
}

// Connect marks the record at index as connected to the current session
func (s *Store) Connect(index int) (account.Record, error) {
	return s.setConnected(index, true)
}

// Revoke removes the session connection from the record at index
func (s *Store) Revoke(index int) (account.Record, error) {
	return s.setConnected(index, false)
}

func (s *Store) setConnected(index int, connected bool) (account.Record, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.records) {
		s.mu.Unlock()
		return account.Record{}, fmt.Errorf("%w: index %d", ErrUnknownAccount, index)
	}
	s.records[index].IsConnected = connected
	rec := s.records[index]
	rec.Index = index
	rec.IsSelected = rec.Address == s.selected
	s.touch()
	s.mu.Unlock()

	log.Info().
		Str("address", rec.Address).
		Bool("connected", connected).
		Msg("account permission changed")
	s.notify()
	return rec, nil
}

// Apply merges a patch. The patch is validated as a whole first, so a bad
// patch leaves the store untouched.
func (s *Store) Apply(p Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	for _, rec := range p.Records {
		s.upsertLocked(rec)
	}
	if p.SelectedAddress != nil {
		s.selected = *p.SelectedAddress
	}
	var missing []string
	for addr, ap := range p.Accounts {
		if ap.Balance != nil {
			wei := *ap.Balance
			s.accounts[addr] = account.Info{Balance: &wei}
		}
		if ap.BalanceError != nil {
			if idx := s.indexLocked(addr); idx >= 0 {
				s.records[idx].BalanceError = *ap.BalanceError
			} else {
				missing = append(missing, addr)
			}
		}
	}
	s.touch()
	s.mu.Unlock()

	for _, addr := range missing {
		log.Warn().Str("address", addr).Msg("balance error for unknown account dropped")
	}
	s.notify()
	return nil
}

func (s *Store) indexLocked(addr string) int {
	for i := range s.records {
		if s.records[i].Address == addr {
			return i
		}
	}
	return -1
}

func (s *Store) touch() {
	s.updatedAt = time.Now()
}

// Subscribe returns a channel that receives after every change.
// Notifications coalesce: a slow reader sees one pending signal, not a backlog.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func copyInfo(info account.Info) account.Info {
	if info.Balance == nil {
		return info
	}
	b := *info.Balance
	return account.Info{Balance: &b}
}
