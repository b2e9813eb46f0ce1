package receipts

import (
	"fmt"
	"strconv"
	"strings"
)

// Control is the structured record a receipt control button carries:
// the submitter, a coarse correlation nonce, and the candidate amount.
// The nonce is a second-resolution submission timestamp, not a secret; no
// server-side session for the submission survives a restart, so this record
// is the whole context an admin action gets.
type Control struct {
	UserID int64
	Nonce  int64
	Amount int64 // candidate source-currency amount; zero for Deny
	Deny   bool
}

const controlPrefix = "rc1"

// Encode packs the control into callback data (fits the 64-byte limit).
func (c Control) Encode() string {
	if c.Deny {
		return fmt.Sprintf("%s|d|%d|%d", controlPrefix, c.UserID, c.Nonce)
	}
	return fmt.Sprintf("%s|a|%d|%d|%d", controlPrefix, c.UserID, c.Nonce, c.Amount)
}

// IsControlData reports whether callback data belongs to this codec.
func IsControlData(data string) bool {
	return strings.HasPrefix(data, controlPrefix+"|")
}

// DecodeControl parses callback data produced by Encode.
func DecodeControl(data string) (Control, error) {
	parts := strings.Split(data, "|")
	if len(parts) < 4 || parts[0] != controlPrefix {
		return Control{}, fmt.Errorf("malformed receipt control: %q", data)
	}

	userID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Control{}, fmt.Errorf("malformed control user id: %q", data)
	}
	nonce, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Control{}, fmt.Errorf("malformed control nonce: %q", data)
	}

	switch parts[1] {
	case "d":
		return Control{UserID: userID, Nonce: nonce, Deny: true}, nil
	case "a":
		if len(parts) != 5 {
			return Control{}, fmt.Errorf("malformed approve control: %q", data)
		}
		amount, err := strconv.ParseInt(parts[4], 10, 64)
		if err != nil || amount <= 0 {
			return Control{}, fmt.Errorf("malformed control amount: %q", data)
		}
		return Control{UserID: userID, Nonce: nonce, Amount: amount}, nil
	default:
		return Control{}, fmt.Errorf("unknown control verb: %q", data)
	}
}
