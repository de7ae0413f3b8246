package storefakes

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pateldm/go-auth-service/kvstore"
	"github.com/pkg/errors"
)

var _ kvstore.Store = (*FakeStore)(nil)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// FakeStore is an in-memory Store for tests. Entries honour their TTL
// against NowFunc, which can be overridden to simulate expiry.
type FakeStore struct {
	NowFunc func() time.Time

	entries map[string]entry
	lock    sync.Mutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		NowFunc: time.Now,
		entries: make(map[string]entry),
	}
}

func (s *FakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "[FakeStore.Set] marshal value")
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.entries[key] = entry{data: data, expiresAt: s.NowFunc().Add(ttl)}
	return nil
}

func (s *FakeStore) Get(_ context.Context, key string, dest any) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.read(key, dest, false)
}

func (s *FakeStore) GetDel(_ context.Context, key string, dest any) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.read(key, dest, true)
}

func (s *FakeStore) Delete(_ context.Context, key string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

// TTL reports the remaining lifetime of a key, for assertions on expiry
// wiring.
func (s *FakeStore) TTL(key string) (time.Duration, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return 0, false
	}
	return e.expiresAt.Sub(s.NowFunc()), true
}

func (s *FakeStore) read(key string, dest any, consume bool) (bool, error) {
	e, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if !s.NowFunc().Before(e.expiresAt) {
		delete(s.entries, key)
		return false, nil
	}
	if consume {
		delete(s.entries, key)
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, errors.Wrapf(err, "[FakeStore] unmarshal %s", key)
	}
	return true, nil
}
