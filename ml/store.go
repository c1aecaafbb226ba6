package ml

import "sync/atomic"

// Store holds the currently served classifier. Each classifier is immutable;
// replacement swaps the pointer atomically, so in-flight requests keep the
// instance they started with.
type Store struct {
	current atomic.Pointer[Classifier]
}

func NewStore(classifier *Classifier) *Store {
	store := &Store{}
	if classifier != nil {
		store.current.Store(classifier)
	}
	return store
}

// Current returns the active classifier, or nil if none is loaded.
func (s *Store) Current() *Classifier {
	return s.current.Load()
}

// Replace installs a new classifier instance.
func (s *Store) Replace(classifier *Classifier) {
	s.current.Store(classifier)
}
