package apperr

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsKind(t *testing.T) {
	err := Wrap(ErrConflict, "order already paid")

	require.EqualError(t, err, "order already paid")
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestKindAndHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		kind   string
		status int
	}{
		{nil, "", http.StatusOK},
		{Wrap(ErrNotFound, "x"), "not_found", http.StatusNotFound},
		{Wrap(ErrForbidden, "x"), "forbidden", http.StatusForbidden},
		{Wrap(ErrConflict, "x"), "conflict", http.StatusConflict},
		{Wrap(ErrValidation, "x"), "validation", http.StatusBadRequest},
		{Wrap(ErrGateway, "x"), "gateway", http.StatusBadGateway},
		{context.DeadlineExceeded, "timeout", http.StatusGatewayTimeout},
		{errors.New("boom"), "internal", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.kind, Kind(tc.err))
		assert.Equal(t, tc.status, HTTPStatus(tc.err))
	}
}
