package memory

import (
	"fmt"

	"github.com/goccy/go-json"

	"hivecore/pkg/domain"
	"hivecore/pkg/entityset"
)

// Bucket names used as snapshot keys by persistent backends.
const (
	BucketHives      = "hives"
	BucketSections   = "hive_sections"
	BucketCategories = "product_categories"
	BucketProducts   = "catalogue_products"
	BucketSequences  = "sequences"
)

// Buckets lists every bucket in the order backends write them.
func Buckets() []string {
	return []string{BucketHives, BucketSections, BucketCategories, BucketProducts, BucketSequences}
}

// Snapshot captures a point-in-time copy of the store state. Rows keep set
// order; Sequences carries each set's identity high-water mark.
type Snapshot struct {
	Hives      []domain.StoreHive        `json:"hives"`
	Sections   []domain.StoreHiveSection `json:"hive_sections"`
	Categories []domain.ProductCategory  `json:"product_categories"`
	Products   []domain.CatalogueProduct `json:"catalogue_products"`
	Sequences  map[string]int            `json:"sequences"`
}

// EncodeBuckets marshals each bucket of the snapshot separately.
func (s Snapshot) EncodeBuckets() (map[string][]byte, error) {
	out := make(map[string][]byte, len(Buckets()))
	for _, bucket := range Buckets() {
		var (
			data []byte
			err  error
		)
		switch bucket {
		case BucketHives:
			data, err = json.Marshal(nonNil(s.Hives))
		case BucketSections:
			data, err = json.Marshal(nonNil(s.Sections))
		case BucketCategories:
			data, err = json.Marshal(nonNil(s.Categories))
		case BucketProducts:
			data, err = json.Marshal(nonNil(s.Products))
		case BucketSequences:
			data, err = json.Marshal(s.Sequences)
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeBucket unmarshals one bucket payload into the snapshot. Unknown
// buckets and empty payloads are ignored.
func (s *Snapshot) DecodeBucket(bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	var target any
	switch bucket {
	case BucketHives:
		target = &s.Hives
	case BucketSections:
		target = &s.Sections
	case BucketCategories:
		target = &s.Categories
	case BucketProducts:
		target = &s.Products
	case BucketSequences:
		target = &s.Sequences
	default:
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}

// Empty reports whether the snapshot holds no rows.
func (s Snapshot) Empty() bool {
	return len(s.Hives) == 0 && len(s.Sections) == 0 && len(s.Categories) == 0 && len(s.Products) == 0
}

type row[T any] interface {
	*T
	entityset.Identifiable
}

func exportSet[T any, P row[T]](set *entityset.Set[P]) []T {
	out := make([]T, 0, set.Len())
	for item := range set.All() {
		out = append(out, *item)
	}
	return out
}

func importRows[T any, P row[T]](rows []T) []P {
	out := make([]P, 0, len(rows))
	for i := range rows {
		cp := rows[i]
		out = append(out, P(&cp))
	}
	return out
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
