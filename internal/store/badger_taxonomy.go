// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/metrics"
	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/taxonomy"
)

// Key prefixes for BadgerDB storage
const (
	topicKeyPrefix   = "topic:"
	keywordKeyPrefix = "kw:"
	appliedKeyPrefix = "applied:"
	keySep           = "\x00"
)

// maxConflictRetries bounds optimistic retries of a learning write.
const maxConflictRetries = 16

// BadgerTaxonomyStore implements taxonomy.Store on BadgerDB.
type BadgerTaxonomyStore struct {
	db     *badger.DB
	owned  bool
	logger zerolog.Logger
}

var (
	_ taxonomy.Store   = (*BadgerTaxonomyStore)(nil)
	_ taxonomy.Catalog = (*BadgerTaxonomyStore)(nil)
)

// OpenBadgerTaxonomyStore opens (or creates) a store at path. An empty path
// opens an in-memory database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadgerTaxonomyStore(path string, logger zerolog.Logger) (*BadgerTaxonomyStore, error) {
	log := logger.With().Str("component", "taxonomy_store").Logger()

	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{log})
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}

	s := NewBadgerTaxonomyStore(db, logger)
	s.owned = true
	return s, nil
}

// NewBadgerTaxonomyStore wraps an open database. The caller keeps ownership.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerTaxonomyStore(db *badger.DB, logger zerolog.Logger) *BadgerTaxonomyStore {
	return &BadgerTaxonomyStore{
		db:     db,
		logger: logger.With().Str("component", "taxonomy_store").Logger(),
	}
}

// Close closes the database if this store opened it.
func (s *BadgerTaxonomyStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database is open.
func (s *BadgerTaxonomyStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("taxonomy store is closed")
	}
	return nil
}

func topicKey(id string) []byte { return []byte(topicKeyPrefix + id) }

func keywordKey(term, id string) []byte { return []byte(keywordKeyPrefix + term + keySep + id) }

func appliedKey(id, feedbackID string) []byte {
	return []byte(appliedKeyPrefix + id + keySep + feedbackID)
}

// Put inserts or replaces an entry and its keyword index.
func (s *BadgerTaxonomyStore) Put(ctx context.Context, entry models.TaxonomyEntry) error {
	start := time.Now()
	err := s.retry(ctx, func(txn *badger.Txn) error {
		old, err := getEntry(txn, entry.ID)
		switch {
		case errors.Is(err, ErrTopicNotFound):
		case err != nil:
			return err
		default:
			for _, t := range keywordTerms(&old) {
				if err := txn.Delete(keywordKey(t, old.ID)); err != nil {
					return fmt.Errorf("delete keyword index: %w", err)
				}
			}
		}
		return putEntry(txn, &entry, keywordTerms(&entry))
	})
	metrics.RecordStoreCall("taxonomy_badger", "put", time.Since(start), err)
	return err
}

// Lookup returns the entry for topicID.
func (s *BadgerTaxonomyStore) Lookup(ctx context.Context, topicID string) (models.TaxonomyEntry, error) {
	start := time.Now()
	var entry models.TaxonomyEntry
	err := ctx.Err()
	if err == nil {
		err = s.db.View(func(txn *badger.Txn) error {
			var err error
			entry, err = getEntry(txn, topicID)
			return err
		})
	}
	metrics.RecordStoreCall("taxonomy_badger", "lookup", time.Since(start), ignoreNotFound(err))
	return entry, err
}

// FindCandidates resolves terms through the keyword index.
func (s *BadgerTaxonomyStore) FindCandidates(ctx context.Context, terms []string) ([]models.TaxonomyEntry, error) {
	start := time.Now()
	var out []models.TaxonomyEntry
	err := ctx.Err()
	if err == nil {
		err = s.db.View(func(txn *badger.Txn) error {
			ids := make(map[string]struct{})
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()

			for _, term := range terms {
				prefix := []byte(keywordKeyPrefix + term + keySep)
				for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
					ids[string(it.Item().Key()[len(prefix):])] = struct{}{}
				}
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			for id := range ids {
				e, err := getEntry(txn, id)
				if errors.Is(err, ErrTopicNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				out = append(out, e)
			}
			return nil
		})
	}
	metrics.RecordStoreCall("taxonomy_badger", "find_candidates", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	sortEntries(out)
	return out, nil
}

// All returns every entry ordered by id.
func (s *BadgerTaxonomyStore) All(ctx context.Context) ([]models.TaxonomyEntry, error) {
	var out []models.TaxonomyEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(topicKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var e models.TaxonomyEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("decode topic %s: %w", it.Item().Key(), err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortEntries(out)
	return out, nil
}

// RecordLearningSignal applies delta in one transaction. Concurrent writers
// to the same topic conflict at commit and the loser retries against the
// new version.
func (s *BadgerTaxonomyStore) RecordLearningSignal(ctx context.Context, topicID string, delta models.LearningDelta) (bool, error) {
	start := time.Now()
	var version uint64
	err := s.retry(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(appliedKey(topicID, delta.FeedbackID))
		if err == nil {
			return errAlreadyApplied
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check applied: %w", err)
		}

		entry, err := getEntry(txn, topicID)
		if err != nil {
			return err
		}
		added := applyDelta(&entry, &delta)
		version = entry.Version

		if err := putEntry(txn, &entry, added); err != nil {
			return err
		}
		return txn.Set(appliedKey(topicID, delta.FeedbackID), []byte(time.Now().UTC().Format(time.RFC3339)))
	})

	if errors.Is(err, errAlreadyApplied) {
		metrics.RecordStoreCall("taxonomy_badger", "record_learning_signal", time.Since(start), nil)
		return false, nil
	}
	metrics.RecordStoreCall("taxonomy_badger", "record_learning_signal", time.Since(start), ignoreNotFound(err))
	if err != nil {
		return false, err
	}

	s.logger.Debug().
		Str("topic_id", topicID).
		Str("feedback_id", delta.FeedbackID).
		Uint64("version", version).
		Msg("learning signal recorded")
	return true, nil
}

// retry runs fn in a read-write transaction, retrying on conflict.
func (s *BadgerTaxonomyStore) retry(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Debug().Int("attempt", attempt+1).Msg("transaction conflict, retrying")
	}
	return fmt.Errorf("taxonomy write: %w after %d attempts", err, maxConflictRetries)
}

func getEntry(txn *badger.Txn, id string) (models.TaxonomyEntry, error) {
	var entry models.TaxonomyEntry
	item, err := txn.Get(topicKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return entry, ErrTopicNotFound
	}
	if err != nil {
		return entry, fmt.Errorf("get topic: %w", err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	})
	if err != nil {
		return entry, fmt.Errorf("decode topic %s: %w", id, err)
	}
	return entry, nil
}

// putEntry writes entry and index keys for terms.
func putEntry(txn *badger.Txn, entry *models.TaxonomyEntry, terms []string) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal topic: %w", err)
	}
	if err := txn.Set(topicKey(entry.ID), data); err != nil {
		return fmt.Errorf("set topic: %w", err)
	}
	for _, t := range terms {
		if err := txn.Set(keywordKey(t, entry.ID), []byte{}); err != nil {
			return fmt.Errorf("set keyword index: %w", err)
		}
	}
	return nil
}

// badgerLogger routes BadgerDB's internal logging through zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msgf(format, args...)
}
