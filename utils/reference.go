package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/desainhub/desainhub-api/apperr"
	"github.com/google/uuid"
)

const orderReferencePrefix = "ORDER-"

// BuildOrderReference derives the gateway-side order reference. The unix
// suffix keeps retried payment attempts for the same order from colliding at
// the gateway.
func BuildOrderReference(orderID uuid.UUID) string {
	return fmt.Sprintf("%s%s-%d", orderReferencePrefix, orderID, time.Now().Unix())
}

// ParseOrderReference recovers the internal order ID from a reference echoed
// by the gateway. The order ID itself contains hyphens, so the nonce is
// stripped from the right.
func ParseOrderReference(ref string) (uuid.UUID, error) {
	if !strings.HasPrefix(ref, orderReferencePrefix) {
		return uuid.Nil, apperr.Wrap(apperr.ErrValidation, "malformed order reference: "+ref)
	}
	trimmed := strings.TrimPrefix(ref, orderReferencePrefix)

	i := strings.LastIndex(trimmed, "-")
	if i <= 0 {
		return uuid.Nil, apperr.Wrap(apperr.ErrValidation, "malformed order reference: "+ref)
	}

	id, err := uuid.Parse(trimmed[:i])
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.ErrValidation, "order reference does not contain a valid order id: "+ref)
	}
	return id, nil
}
