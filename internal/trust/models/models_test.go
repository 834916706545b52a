package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "ipguard/pkg/domain-errors"
)

func TestSetAddressRequest(t *testing.T) {
	t.Run("trims before validating", func(t *testing.T) {
		req := &SetAddressRequest{Address: "  203.0.113.10\n"}
		req.Normalize()
		assert.Equal(t, "203.0.113.10", req.Address)
		assert.NoError(t, req.Validate())
	})

	t.Run("ipv6 accepted", func(t *testing.T) {
		assert.NoError(t, (&SetAddressRequest{Address: "2001:db8::1"}).Validate())
	})

	for _, addr := range []string{"", "example.com", "300.1.1.1", "10.0.0.1/24"} {
		t.Run("rejects "+addr, func(t *testing.T) {
			err := (&SetAddressRequest{Address: addr}).Validate()
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}
