package receipts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ctl  Control
	}{
		{name: "approve", ctl: Control{UserID: 42, Nonce: 1700000000, Amount: 5000}},
		{name: "deny", ctl: Control{UserID: 42, Nonce: 1700000000, Deny: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.ctl.Encode()
			require.True(t, IsControlData(data))
			assert.LessOrEqual(t, len(data), 64, "callback data must fit the 64-byte limit")

			decoded, err := DecodeControl(data)
			require.NoError(t, err)
			assert.Equal(t, tt.ctl, decoded)
		})
	}
}

func TestDecodeControlRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"rc1",
		"rc1|a|x|123|500",
		"rc1|a|42|y|500",
		"rc1|a|42|123",
		"rc1|a|42|123|zero",
		"rc1|a|42|123|-5",
		"rc1|z|42|123",
		"pkg:5000",
	}
	for _, data := range cases {
		_, err := DecodeControl(data)
		assert.Error(t, err, data)
	}
}

func TestIsControlData(t *testing.T) {
	assert.True(t, IsControlData("rc1|d|1|2"))
	assert.False(t, IsControlData("admin:stats"))
	assert.False(t, IsControlData("rc10"))
}
