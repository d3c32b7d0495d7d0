package constants

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionEncodeParse(t *testing.T) {
	cases := []Action{
		SelectPlan("15 Minutes"),
		Cancel("0f8b3c1e-2d4a-4b6f-9a1e-7c2d5e8f9a0b"),
		Renew(123456789),
		Renew(-1001234567890),
	}
	for _, want := range cases {
		data := want.Encode()
		assert.LessOrEqual(t, len(data), maxCallbackDataLen)

		got, err := ParseAction(data)
		require.NoError(t, err, data)
		assert.Equal(t, want, got)
	}
}

func TestActionWireFormat(t *testing.T) {
	assert.Equal(t, "plan|1 Hour", SelectPlan("1 Hour").Encode())
	assert.Equal(t, "cancel|ref-1", Cancel("ref-1").Encode())
	assert.Equal(t, "renew|42", Renew(42).Encode())
	assert.Empty(t, Action{Kind: "other"}.Encode())
}

func TestParseActionRejectsMalformed(t *testing.T) {
	for _, data := range []string{
		"",
		"plan",
		"plan|",
		"renew|abc",
		"refund|ref",
		"stats",
		"plan|" + string(make([]byte, 80)),
	} {
		_, err := ParseAction(data)
		assert.True(t, errors.Is(err, ErrUnknownAction), "data %q", data)
	}
}
