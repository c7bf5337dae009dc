package enums

import "fmt"

// QuoteStatus tracks the editing lifecycle of a priced quote version.
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusDrafting  QuoteStatus = "drafting"
	QuoteStatusSubmitted QuoteStatus = "submitted"
	QuoteStatusApproved  QuoteStatus = "approved"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusDrafting,
	QuoteStatusSubmitted,
	QuoteStatusApproved,
}

// String implements fmt.Stringer.
func (q QuoteStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuoteStatus.
func (q QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
