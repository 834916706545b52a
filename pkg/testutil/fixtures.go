package testutil

import (
	"github.com/google/uuid"

	id "ipguard/pkg/domain"
)

// TestIDs provides fixed principal identifiers for deterministic test data.
var TestIDs = struct {
	Principal1 id.PrincipalID
	Principal2 id.PrincipalID
	Principal3 id.PrincipalID
}{
	Principal1: id.PrincipalID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	Principal2: id.PrincipalID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	Principal3: id.PrincipalID(uuid.MustParse("33333333-3333-3333-3333-333333333333")),
}

// Addresses used across tests. TrustedAddr is what fixtures store;
// ForeignAddr is a mismatching connection address.
const (
	TrustedAddr = "203.0.113.10"
	ForeignAddr = "198.51.100.77"
)
