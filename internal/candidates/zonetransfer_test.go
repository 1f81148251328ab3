package candidates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZoneTransferNilProbeReturnsNil(t *testing.T) {
	assert.Nil(t, ZoneTransfer(context.Background(), "example.com", nil))
}
