// Package domain defines the store-hive and product-catalogue entities, the
// record contract shared by domain services, and the typed business errors.
package domain

import "time"

// EntityType identifies the kind of record held in an entity set.
type EntityType string

// Supported entity type identifiers used in errors, events and persistence buckets.
const (
	// EntityHive identifies a store hive (warehouse) record.
	EntityHive EntityType = "hive"
	// EntityHiveSection identifies a section inside a store hive.
	EntityHiveSection EntityType = "hive_section"
	// EntityCategory identifies a product category record.
	EntityCategory EntityType = "product_category"
	// EntityProduct identifies a catalogue product record.
	EntityProduct EntityType = "catalogue_product"
)

// Record is the contract domain services rely on for identity, code
// uniqueness and the soft-delete flag.
type Record interface {
	Identity() int
	UniqueCode() string
	Deleted() bool
	MarkDeleted(deleted bool)
	Touch(at time.Time)
}

// Base carries the fields every entity shares.
type Base struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity returns the stable integer identifier.
func (b *Base) Identity() int { return b.ID }

// UniqueCode returns the uniqueness key.
func (b *Base) UniqueCode() string { return b.Code }

// Deleted reports the soft-delete flag.
func (b *Base) Deleted() bool { return b.IsDeleted }

// MarkDeleted sets the soft-delete flag.
func (b *Base) MarkDeleted(deleted bool) { b.IsDeleted = deleted }

// Touch records a modification time, also stamping CreatedAt on first use.
func (b *Base) Touch(at time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = at
	}
	b.UpdatedAt = at
}
