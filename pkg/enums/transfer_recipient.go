package enums

import "fmt"

// TransferRecipient identifies which party a payout transfer is for.
type TransferRecipient string

const (
	TransferRecipientDesigner   TransferRecipient = "designer"
	TransferRecipientSeamstress TransferRecipient = "seamstress"
)

var validTransferRecipients = []TransferRecipient{
	TransferRecipientDesigner,
	TransferRecipientSeamstress,
}

// String implements fmt.Stringer.
func (t TransferRecipient) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransferRecipient.
func (t TransferRecipient) IsValid() bool {
	for _, candidate := range validTransferRecipients {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransferRecipient converts raw input into a TransferRecipient.
func ParseTransferRecipient(value string) (TransferRecipient, error) {
	for _, candidate := range validTransferRecipients {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer recipient %q", value)
}
