// Package memory is an in-process storage backend with the same semantics
// as the Mongo repositories, unique constraints included. It backs
// STORE_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-storefront/models"
)

// Store holds every collection behind one lock.
type Store struct {
	mu       sync.RWMutex
	seq      int64
	users    []*userRow
	products []*productRow
	reviews  []*reviewRow
	orders   []*orderRow

	now func() time.Time
}

type userRow struct {
	seq int64
	models.User
}

type productRow struct {
	seq int64
	models.Product
}

type reviewRow struct {
	seq int64
	models.Review
}

type orderRow struct {
	seq int64
	models.Order
}

// New returns an empty store.
func New() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

// Users returns the user repository.
func (s *Store) Users() *Users { return &Users{s: s} }

// Products returns the product repository.
func (s *Store) Products() *Products { return &Products{s: s} }

// Reviews returns the review repository.
func (s *Store) Reviews() *Reviews { return &Reviews{s: s} }

// Orders returns the order repository.
func (s *Store) Orders() *Orders { return &Orders{s: s} }

// WithTransaction runs fn directly.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// newestFirst orders rows by creation time descending, breaking ties by
// insertion order.
func newestFirst[T any](rows []T, created func(T) time.Time, seq func(T) int64) {
	sort.SliceStable(rows, func(i, j int) bool {
		ci, cj := created(rows[i]), created(rows[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return seq(rows[i]) > seq(rows[j])
	})
}
