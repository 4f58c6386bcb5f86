package googleai

import (
	"context"
	"testing"

	"dv-relay/internal/observability"

	"github.com/stretchr/testify/assert"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), "  ", "", "be kind", observability.NewNopLogger())

	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestClose_NilClient(t *testing.T) {
	var c *Client

	assert.NoError(t, c.Close())
}
