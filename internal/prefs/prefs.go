// Package prefs persists small device-local preferences: the favorites
// list and the last payment method used. These never leave the device; the
// backend has no endpoint for them.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/KH-Co/Bari-Foods/internal/domain"
)

type fileData struct {
	Favorites         []int64              `json:"favorites"`
	LastPaymentMethod domain.PaymentMethod `json:"lastPaymentMethod,omitempty"`
}

// Store reads and writes the preferences file. All methods are safe for
// concurrent use; every change is written through immediately.
type Store struct {
	path string

	mu          sync.Mutex
	favorites   map[int64]struct{}
	lastPayment domain.PaymentMethod
}

// DefaultPath places the preferences file under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "bari-foods", "prefs.json"), nil
}

// Open loads the store from path. A missing file is a fresh store, not an
// error; a corrupt file is reported so the caller can decide.
func Open(path string) (*Store, error) {
	s := &Store{path: path, favorites: map[int64]struct{}{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prefs: %w", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("parse prefs: %w", err)
	}
	for _, id := range fd.Favorites {
		s.favorites[id] = struct{}{}
	}
	s.lastPayment = fd.LastPaymentMethod
	return s, nil
}

// IsFavorite reports whether a product is in the favorites list.
func (s *Store) IsFavorite(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favorites[productID]
	return ok
}

// Favorites returns the favorite product ids in ascending order.
func (s *Store) Favorites() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.favorites))
	for id := range s.favorites {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ToggleFavorite flips a product in or out of the favorites list and
// reports the new state.
func (s *Store) ToggleFavorite(productID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.favorites[productID]; ok {
		delete(s.favorites, productID)
	} else {
		s.favorites[productID] = struct{}{}
	}
	_, nowFavorite := s.favorites[productID]

	if err := s.flushLocked(); err != nil {
		return nowFavorite, err
	}
	return nowFavorite, nil
}

// LastPaymentMethod returns the method used on the previous order, or the
// zero value if none was recorded.
func (s *Store) LastPaymentMethod() domain.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPayment
}

// SetLastPaymentMethod records the method chosen at checkout.
func (s *Store) SetLastPaymentMethod(m domain.PaymentMethod) error {
	if !m.Valid() {
		return fmt.Errorf("record payment method %q: not a known method", m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPayment = m
	return s.flushLocked()
}

// flushLocked writes the file via a temp-and-rename so a crash mid-write
// cannot leave a half-written file. Callers hold s.mu.
func (s *Store) flushLocked() error {
	fd := fileData{
		Favorites:         make([]int64, 0, len(s.favorites)),
		LastPaymentMethod: s.lastPayment,
	}
	for id := range s.favorites {
		fd.Favorites = append(fd.Favorites, id)
	}
	sort.Slice(fd.Favorites, func(i, j int) bool { return fd.Favorites[i] < fd.Favorites[j] })

	data, err := json.MarshalIndent(fd, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
