package domain_test

import (
	"testing"

	"hivecore/testutil"
)

func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "domain types are shared by every layer")
}

func TestDomainDoesNotImportEntitySets(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.EntitySetForbidden, "entities must not know how they are stored")
}
