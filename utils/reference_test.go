package utils

import (
	"fmt"
	"strings"
	"testing"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderReferenceRoundTrip(t *testing.T) {
	orderID := uuid.New()

	ref := BuildOrderReference(orderID)
	assert.True(t, strings.HasPrefix(ref, "ORDER-"))

	parsed, err := ParseOrderReference(ref)
	require.NoError(t, err)
	assert.Equal(t, orderID, parsed)
}

func TestParseOrderReferenceSurvivesAnySuffixNonce(t *testing.T) {
	orderID := uuid.New()

	// The gateway echoes the reference untouched; only the part after the
	// last hyphen is the nonce.
	for _, nonce := range []string{"0", "1717171717", "99999999999"} {
		ref := fmt.Sprintf("ORDER-%s-%s", orderID, nonce)
		parsed, err := ParseOrderReference(ref)
		require.NoError(t, err)
		assert.Equal(t, orderID, parsed)
	}
}

func TestParseOrderReferenceRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		ref  string
	}{
		{"empty", ""},
		{"wrong prefix", "INVOICE-" + uuid.NewString() + "-123"},
		{"missing nonce", "ORDER-" + uuid.NewString()},
		{"not a uuid", "ORDER-not-a-uuid-123"},
		{"prefix only", "ORDER-"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOrderReference(tc.ref)
			require.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}
