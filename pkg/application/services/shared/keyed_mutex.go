package shared

import (
	"sync"

	"github.com/moby/locker"
)

// KeyedMutex serializes work per key while letting different keys proceed in
// parallel. The zero value is ready to use. Lock entries are reference
// counted by the underlying locker and dropped when the last holder leaves.
type KeyedMutex struct {
	init   sync.Once
	locker *locker.Locker
}

func (k *KeyedMutex) locks() *locker.Locker {
	k.init.Do(func() {
		k.locker = locker.New()
	})
	return k.locker
}

// Lock blocks until the key is free and returns the matching unlock
// function. Calling the unlock function more than once is a no-op.
func (k *KeyedMutex) Lock(key string) func() {
	l := k.locks()
	l.Lock(key)

	var once sync.Once
	return func() {
		once.Do(func() {
			// Unlock only fails for keys that are not held, which once rules out
			_ = l.Unlock(key)
		})
	}
}
