// Package objectstore persists the in-memory store as whole-state JSON
// snapshots in a blob store. Each successful Run writes a new object named
// <prefix><unix-nanos>.json; the newest object is loaded on open and older
// ones are pruned.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"hivecore/internal/blob/core"
	"hivecore/internal/infra/persistence/memory"
)

// DefaultPrefix is used when no key prefix is configured.
const DefaultPrefix = "snapshots/"

const maxKeyAttempts = 8

// Option customizes a Store.
type Option func(*Store)

// WithLogger routes prune failures to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used to name snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRetain keeps the newest n snapshots instead of only the latest.
func WithRetain(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.retain = n
		}
	}
}

// Store embeds memory.Store and writes a snapshot object after each Run.
type Store struct {
	*memory.Store
	blobs  core.Store
	prefix string
	retain int
	now    func() time.Time
	logger *zap.Logger
}

// NewStore hydrates a store from the newest snapshot under prefix.
func NewStore(ctx context.Context, blobs core.Store, prefix string, opts ...Option) (*Store, error) {
	if blobs == nil {
		return nil, errors.New("objectstore: nil blob store")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	s := &Store{
		Store:  memory.NewStore(),
		blobs:  blobs,
		prefix: prefix,
		retain: 1,
		now:    func() time.Time { return time.Now().UTC() },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	keys, err := s.snapshotKeys(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) > 0 {
		snapshot, err := s.read(ctx, keys[len(keys)-1])
		if err != nil {
			return nil, err
		}
		if err := s.ImportState(snapshot); err != nil {
			return nil, err
		}
	}
	s.OnCommit(s.persist)
	return s, nil
}

// Prefix returns the key prefix snapshots are written under.
func (s *Store) Prefix() string { return s.prefix }

func (s *Store) snapshotKeys(ctx context.Context) ([]string, error) {
	infos, err := s.blobs.List(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		if strings.HasSuffix(info.Key, ".json") {
			keys = append(keys, info.Key)
		}
	}
	return keys, nil
}

func (s *Store) read(ctx context.Context, key string) (memory.Snapshot, error) {
	_, rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("read snapshot %s: %w", key, err)
	}
	var snapshot memory.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return memory.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return snapshot, nil
}

func (s *Store) persist(ctx context.Context, snapshot memory.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	stamp := s.now().UnixNano()
	var written string
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key := fmt.Sprintf("%s%020d.json", s.prefix, stamp+int64(attempt))
		_, err = s.blobs.Put(ctx, key, bytes.NewReader(data), core.PutOptions{ContentType: "application/json"})
		if err == nil {
			written = key
			break
		}
		if !errors.Is(err, core.ErrExists) {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}
	if written == "" {
		return fmt.Errorf("write snapshot: %w", err)
	}
	s.prune(ctx, written)
	return nil
}

// prune deletes all but the newest retained snapshots. Failures are logged
// only; the snapshot that was just written is already durable.
func (s *Store) prune(ctx context.Context, written string) {
	keys, err := s.snapshotKeys(ctx)
	if err != nil {
		s.logger.Warn("list snapshots for pruning", zap.Error(err))
		return
	}
	if len(keys) <= s.retain {
		return
	}
	for _, key := range keys[:len(keys)-s.retain] {
		if key == written {
			continue
		}
		if _, err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.Warn("prune snapshot", zap.String("key", key), zap.Error(err))
		}
	}
}
