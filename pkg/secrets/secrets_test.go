package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ipguard/pkg/domain-errors"
)

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("operator-token")
	require.NoError(t, err)
	assert.True(t, IsHash(hash))
	assert.False(t, IsHash("operator-token"))

	assert.NoError(t, Verify("operator-token", hash))
	assert.True(t, dErrors.HasCode(Verify("guess", hash), dErrors.CodeUnauthorized))
	assert.True(t, dErrors.HasCode(Verify("operator-token", "not-a-hash"), dErrors.CodeInternal))

	_, err = Hash("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
