package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"hivecore/pkg/domain"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	nf := fmt.Errorf("get: %w", domain.NotFoundError{Entity: domain.EntityHive, ID: 4})
	if !errors.Is(nf, domain.ErrNotFound) || errors.Is(nf, domain.ErrConflict) {
		t.Fatalf("not found error classified wrongly: %v", nf)
	}
	var typed domain.NotFoundError
	if !errors.As(nf, &typed) || typed.ID != 4 || typed.Entity != domain.EntityHive {
		t.Fatalf("expected typed not found, got %+v", typed)
	}
	if nf.Error() != "get: hive 4 not found" {
		t.Fatalf("unexpected message %q", nf.Error())
	}

	cf := domain.ConflictError{Entity: domain.EntityProduct, Reason: "code P1 already in use"}
	if !errors.Is(cf, domain.ErrConflict) {
		t.Fatalf("conflict should match sentinel")
	}
	if cf.Error() != "catalogue_product conflict: code P1 already in use" {
		t.Fatalf("unexpected message %q", cf.Error())
	}
	withID := domain.ConflictError{Entity: domain.EntityHive, ID: 2, Reason: "not soft-deleted"}
	if withID.Error() != "hive 2 conflict: not soft-deleted" {
		t.Fatalf("unexpected message %q", withID.Error())
	}
}

func TestBaseRecordContract(t *testing.T) {
	var r domain.Record = &domain.StoreHive{Base: domain.Base{ID: 3, Code: "H3"}}
	if r.Identity() != 3 || r.UniqueCode() != "H3" || r.Deleted() {
		t.Fatalf("unexpected record view")
	}
	r.MarkDeleted(true)
	if !r.Deleted() {
		t.Fatalf("flag not set")
	}
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)
	r.Touch(first)
	r.Touch(later)
	h := r.(*domain.StoreHive)
	if !h.CreatedAt.Equal(first) || !h.UpdatedAt.Equal(later) {
		t.Fatalf("unexpected timestamps %v %v", h.CreatedAt, h.UpdatedAt)
	}
}

func TestCloneDetaches(t *testing.T) {
	p := &domain.CatalogueProduct{Base: domain.Base{ID: 1, Name: "Ball"}}
	cp := domain.CloneProduct(p)
	cp.Name = "Bat"
	if p.Name != "Ball" {
		t.Fatalf("clone shares storage with original")
	}
}
