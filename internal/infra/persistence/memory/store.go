// Package memory provides the in-memory store backing both data contexts. It is
// the canonical state for every backend; persistent stores embed it and flush
// snapshots through the commit hook.
package memory

import (
	"context"
	"fmt"
	"sync"

	"hivecore/internal/datacontext"
	"hivecore/pkg/domain"
	"hivecore/pkg/entityset"
)

// Compile-time contract assertions ensuring memory.Store serves both contexts.
var (
	_ datacontext.HiveContext      = (*Store)(nil)
	_ datacontext.CatalogueContext = (*Store)(nil)
)

// CommitFunc receives the state produced by a successful Run. Returning an
// error rolls the store back to the state it had before Run.
type CommitFunc func(ctx context.Context, snapshot Snapshot) error

// Store holds the four entity sets behind a single lock.
type Store struct {
	mu         sync.RWMutex
	hives      *entityset.Set[*domain.StoreHive]
	sections   *entityset.Set[*domain.StoreHiveSection]
	categories *entityset.Set[*domain.ProductCategory]
	products   *entityset.Set[*domain.CatalogueProduct]
	onCommit   CommitFunc
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		hives:      entityset.New[*domain.StoreHive](),
		sections:   entityset.New[*domain.StoreHiveSection](),
		categories: entityset.New[*domain.ProductCategory](),
		products:   entityset.New[*domain.CatalogueProduct](),
	}
}

// OnCommit installs the hook invoked after every successful Run.
func (s *Store) OnCommit(fn CommitFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = fn
}

// Hives returns the live hive set. Access it only inside Run or View.
func (s *Store) Hives() *entityset.Set[*domain.StoreHive] { return s.hives }

// Sections returns the live hive section set.
func (s *Store) Sections() *entityset.Set[*domain.StoreHiveSection] { return s.sections }

// Categories returns the live product category set.
func (s *Store) Categories() *entityset.Set[*domain.ProductCategory] { return s.categories }

// Products returns the live catalogue product set.
func (s *Store) Products() *entityset.Set[*domain.CatalogueProduct] { return s.products }

// Run executes fn under the write lock. When fn or the commit hook fails the
// sets are restored to the checkpoint taken before fn ran.
func (s *Store) Run(ctx context.Context, fn datacontext.Unit) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", entityset.ErrOperationCancelled, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	checkpoint := s.exportLocked()
	if err := fn(ctx); err != nil {
		s.rollbackLocked(checkpoint)
		return err
	}
	if s.onCommit == nil {
		return nil
	}
	if err := s.onCommit(ctx, s.exportLocked()); err != nil {
		s.rollbackLocked(checkpoint)
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// View executes fn under the read lock. fn must not mutate the sets.
func (s *Store) View(ctx context.Context, fn datacontext.Unit) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", entityset.ErrOperationCancelled, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx)
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exportLocked()
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importLocked(snapshot)
}

func (s *Store) exportLocked() Snapshot {
	return Snapshot{
		Hives:      exportSet(s.hives),
		Sections:   exportSet(s.sections),
		Categories: exportSet(s.categories),
		Products:   exportSet(s.products),
		Sequences: map[string]int{
			BucketHives:      s.hives.Sequence(),
			BucketSections:   s.sections.Sequence(),
			BucketCategories: s.categories.Sequence(),
			BucketProducts:   s.products.Sequence(),
		},
	}
}

func (s *Store) importLocked(snapshot Snapshot) error {
	hives := entityset.New[*domain.StoreHive]()
	if err := hives.Restore(importRows(snapshot.Hives), snapshot.Sequences[BucketHives]); err != nil {
		return fmt.Errorf("import %s: %w", BucketHives, err)
	}
	sections := entityset.New[*domain.StoreHiveSection]()
	if err := sections.Restore(importRows(snapshot.Sections), snapshot.Sequences[BucketSections]); err != nil {
		return fmt.Errorf("import %s: %w", BucketSections, err)
	}
	categories := entityset.New[*domain.ProductCategory]()
	if err := categories.Restore(importRows(snapshot.Categories), snapshot.Sequences[BucketCategories]); err != nil {
		return fmt.Errorf("import %s: %w", BucketCategories, err)
	}
	products := entityset.New[*domain.CatalogueProduct]()
	if err := products.Restore(importRows(snapshot.Products), snapshot.Sequences[BucketProducts]); err != nil {
		return fmt.Errorf("import %s: %w", BucketProducts, err)
	}
	s.hives, s.sections, s.categories, s.products = hives, sections, categories, products
	return nil
}

func (s *Store) rollbackLocked(checkpoint Snapshot) {
	if err := s.importLocked(checkpoint); err != nil {
		panic(fmt.Errorf("memory store rollback: %w", err))
	}
}
