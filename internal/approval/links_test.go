package approval

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ipguard/pkg/domain"
	dErrors "ipguard/pkg/domain-errors"
)

func TestLinkSigner(t *testing.T) {
	c := newClock()
	signer, err := NewLinkSigner("s3cret", "https://guard.example/", WithLinkClock(c.Now))
	require.NoError(t, err)

	p := pending()
	p.Token = id.NewApprovalToken()
	p.ExpiresAt = c.Now().Add(time.Hour)

	t.Run("round trip", func(t *testing.T) {
		link, err := signer.URL(p)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(link, "https://guard.example"+LinkPath))

		token, err := signer.Verify(strings.TrimPrefix(link, "https://guard.example"+LinkPath))
		require.NoError(t, err)
		assert.Equal(t, p.Token, token)
	})

	t.Run("tampered link is rejected", func(t *testing.T) {
		signed, err := signer.Sign(p)
		require.NoError(t, err)

		other, err := NewLinkSigner("other", "https://guard.example")
		require.NoError(t, err)
		_, err = other.Verify(signed)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("expired link is rejected", func(t *testing.T) {
		signed, err := signer.Sign(p)
		require.NoError(t, err)

		c.Advance(2 * time.Hour)
		defer c.Advance(-2 * time.Hour)

		_, err = signer.Verify(signed)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("links without expiry stay valid", func(t *testing.T) {
		forever := p
		forever.ExpiresAt = time.Time{}
		signed, err := signer.Sign(forever)
		require.NoError(t, err)

		_, err = signer.Verify(signed)
		assert.NoError(t, err)
	})

	t.Run("empty link is rejected", func(t *testing.T) {
		_, err := signer.Verify("")
		assert.Error(t, err)
	})

	t.Run("constructor validates inputs", func(t *testing.T) {
		_, err := NewLinkSigner("", "https://guard.example")
		assert.Error(t, err)
		_, err = NewLinkSigner("k", "not a url")
		assert.Error(t, err)
	})

}
