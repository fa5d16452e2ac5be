// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package taxonomy

import "sync"

// topicLocks hands out one mutex per topic id. Entries are removed when the
// last holder releases them.
type topicLocks struct {
	mu    sync.Mutex
	locks map[string]*topicLock
}

type topicLock struct {
	mu   sync.Mutex
	refs int
}

func newTopicLocks() *topicLocks {
	return &topicLocks{locks: make(map[string]*topicLock)}
}

// lock blocks until the topic is free and returns its release func.
func (t *topicLocks) lock(topicID string) func() {
	t.mu.Lock()
	l, ok := t.locks[topicID]
	if !ok {
		l = &topicLock{}
		t.locks[topicID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, topicID)
		}
		t.mu.Unlock()
	}
}

func (t *topicLocks) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
