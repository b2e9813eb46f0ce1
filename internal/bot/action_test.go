package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"meowpremium-bot/internal/service/receipts"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		data string
		want Action
	}{
		{data: encodeSelectPackage(5000), want: SelectPackageAction{Amount: 5000}},
		{data: encodeConfirmTopUp(10000), want: ConfirmTopUpAction{Amount: 10000}},
		{data: encodeSelectProduct("premium_1m"), want: SelectProductAction{Key: "premium_1m"}},
		{data: encodeConfirmPrice("premium_1m"), want: ConfirmPriceAction{Key: "premium_1m"}},
		{data: encodeAdminPanel("broadcast"), want: AdminPanelAction{Panel: "broadcast"}},
		{data: encodeAdminPanel("stats"), want: AdminPanelAction{Panel: "stats"}},
		{data: encodeAdminPanel("refresh"), want: AdminPanelAction{Panel: "refresh"}},
		{data: encodeBroadcastConfirm(true), want: BroadcastConfirmAction{Confirm: true}},
		{data: encodeBroadcastConfirm(false), want: BroadcastConfirmAction{Confirm: false}},
		{data: encodeBan(42, true), want: BanAction{UserID: 42, Banned: true}},
		{data: encodeBan(42, false), want: BanAction{UserID: 42, Banned: false}},
		{
			data: receipts.Control{UserID: 42, Nonce: 7, Amount: 5000}.Encode(),
			want: ReceiptControlAction{Control: receipts.Control{UserID: 42, Nonce: 7, Amount: 5000}},
		},
		{
			data: receipts.Control{UserID: 42, Nonce: 7, Deny: true}.Encode(),
			want: ReceiptControlAction{Control: receipts.Control{UserID: 42, Nonce: 7, Deny: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAction(tt.data))
		})
	}
}

func TestParseActionUnknown(t *testing.T) {
	cases := []string{
		"",
		"noverb",
		"pkg:abc",
		"pkg:-5",
		"pay:0",
		"buy:",
		"price:",
		"admin:selfdestruct",
		"bcast:maybe",
		"ban:42",
		"ban:abc:true",
		"ban:42:sometimes",
		"rc1|a|bad|data",
	}
	for _, data := range cases {
		t.Run(data, func(t *testing.T) {
			assert.Equal(t, UnknownAction{Data: data}, ParseAction(data))
		})
	}
}
