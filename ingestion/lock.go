// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"sync"
)

// Locker serializes the dedupe, allocate and persist section for a name.
type Locker interface {
	// Lock blocks until name is held or ctx is done. The returned function
	// releases the lock.
	Lock(ctx context.Context, name string) (unlock func(), err error)
}

// LocalLocker is an in-process Locker keyed by name.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

var _ Locker = (*LocalLocker)(nil)

// NewLocalLocker creates an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(name string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[name]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[name] = ch
	}
	return ch
}

// Lock acquires name.
func (l *LocalLocker) Lock(ctx context.Context, name string) (func(), error) {
	ch := l.slot(name)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
