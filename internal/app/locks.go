package app

import (
	"context"
	"sort"
	"sync"
)

// KeyedMutex serializes work per key. The context returned by Lock records
// the held key, so nested calls for the same key with that context pass
// straight through instead of deadlocking.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

type heldKey struct {
	m   *KeyedMutex
	key string
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

// Lock blocks until key is free and returns a context marking it held plus the
// matching unlock function.
func (k *KeyedMutex) Lock(ctx context.Context, key string) (context.Context, func()) {
	if ctx.Value(heldKey{k, key}) != nil {
		return ctx, func() {}
	}

	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return context.WithValue(ctx, heldKey{k, key}, true), func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// LockAll locks several keys in sorted order.
func (k *KeyedMutex) LockAll(ctx context.Context, keys ...string) (context.Context, func()) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	var unlocks []func()
	var prev string
	for i, key := range sorted {
		if i > 0 && key == prev {
			continue
		}
		prev = key
		var unlock func()
		ctx, unlock = k.Lock(ctx, key)
		unlocks = append(unlocks, unlock)
	}

	return ctx, func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

// Locks holds the per-letter and per-user critical sections shared by the services.
//
// Lock order is letter before user, users in sorted order, and every lock is
// taken before a transaction begins: the SQLite pool has one connection, so a
// goroutine must never wait on a lock while holding it.
type Locks struct {
	Letters *KeyedMutex
	Users   *KeyedMutex
}

// NewLocks creates the shared lock set.
func NewLocks() *Locks {
	return &Locks{
		Letters: NewKeyedMutex(),
		Users:   NewKeyedMutex(),
	}
}
