package vocab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/flowr-app/flowr/internal/kv"
)

// ErrPersist marks a word that was accepted for the session but could not be saved.
var ErrPersist = errors.New("vocabulary not persisted")

// Store holds the custom tier for each kind, backed by a kv.Store.
type Store struct {
	kv   kv.Store
	base Base
	log  *zap.Logger

	mu     sync.Mutex
	custom map[Kind][]string
}

func NewStore(store kv.Store, base Base, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		kv:     store,
		base:   base,
		log:    log,
		custom: make(map[Kind][]string),
	}
}

// Load returns the custom words for kind, reading them from the backing
// store on first use.
func (s *Store) Load(ctx context.Context, kind Kind) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	words, err := s.loadLocked(ctx, kind)
	return slices.Clone(words), err
}

func (s *Store) loadLocked(ctx context.Context, kind Kind) ([]string, error) {
	if words, ok := s.custom[kind]; ok {
		return words, nil
	}
	raw, err := s.kv.Get(ctx, kind.SlotKey())
	if errors.Is(err, kv.ErrNotFound) {
		s.custom[kind] = []string{}
		return s.custom[kind], nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	var words []string
	if err := json.Unmarshal([]byte(raw), &words); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	if words == nil {
		words = []string{}
	}
	s.custom[kind] = words
	return words, nil
}

// Merged returns the effective dictionary for kind.
func (s *Store) Merged(ctx context.Context, kind Kind) ([]string, error) {
	custom, err := s.Load(ctx, kind)
	if err != nil {
		return Merge(s.base.Words(kind), nil), err
	}
	return Merge(s.base.Words(kind), custom), nil
}

// Add appends word to the custom tier unless it is blank or already known
// in any casing. It reports whether the word was added. When saving fails
// the word stays available for this process and the error wraps ErrPersist.
func (s *Store) Add(ctx context.Context, kind Kind, word string) (bool, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// An unreadable custom tier is left alone so a later write cannot clobber it.
	custom, err := s.loadLocked(ctx, kind)
	if err != nil {
		return false, err
	}
	if containsFold(s.base.Words(kind), word) || containsFold(custom, word) {
		return false, nil
	}

	custom = append(custom, word)
	s.custom[kind] = custom

	payload, err := json.Marshal(custom)
	if err != nil {
		return true, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.kv.Put(ctx, kind.SlotKey(), string(payload)); err != nil {
		s.log.Warn("custom vocabulary not saved",
			zap.String("kind", string(kind)), zap.String("word", word), zap.Error(err))
		return true, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return true, nil
}

// RecordReview adds the feels and activity of a submitted review.
func (s *Store) RecordReview(ctx context.Context, feels []string, activity string) error {
	var errs []error
	for _, f := range feels {
		if _, err := s.Add(ctx, Feels, f); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := s.Add(ctx, Activities, activity); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
