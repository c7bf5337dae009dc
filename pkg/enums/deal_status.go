package enums

import "fmt"

// DealStatus is one of the 25 ordered lifecycle codes a deal moves through.
// The code set, ordinals and phase grouping are a persisted contract shared
// with the UI and notification subsystems; never reorder or renumber them
// without migrating every stored deal row.
type DealStatus string

const (
	DealStatusInquiryReceived     DealStatus = "M01"
	DealStatusQuoteRequested      DealStatus = "M02"
	DealStatusAwaitingQuotes      DealStatus = "M03"
	DealStatusQuotesReceived      DealStatus = "M04"
	DealStatusQuotePresented      DealStatus = "M05"
	DealStatusQuoteUnderRevision  DealStatus = "M06"
	DealStatusQuoteApproved       DealStatus = "M07"
	DealStatusContractDrafted     DealStatus = "M08"
	DealStatusContractSigned      DealStatus = "M09"
	DealStatusQuotingClosed       DealStatus = "M10"
	DealStatusOrderConfirmed      DealStatus = "M11"
	DealStatusDepositInvoiced     DealStatus = "M12"
	DealStatusDepositPaid         DealStatus = "M13"
	DealStatusFactoryOrderPlaced  DealStatus = "M14"
	DealStatusBalanceScheduled    DealStatus = "M15"
	DealStatusProductionStarted   DealStatus = "M16"
	DealStatusSampleApproved      DealStatus = "M17"
	DealStatusInProduction        DealStatus = "M18"
	DealStatusProductionComplete  DealStatus = "M19"
	DealStatusInspectionScheduled DealStatus = "M20"
	DealStatusShipmentBooked      DealStatus = "M21"
	DealStatusShipped             DealStatus = "M22"
	DealStatusInCustoms           DealStatus = "M23"
	DealStatusOutForDelivery      DealStatus = "M24"
	DealStatusDelivered           DealStatus = "M25"
)

// DealPhase groups status codes into the five lifecycle phases.
type DealPhase string

const (
	DealPhaseQuoting    DealPhase = "quoting"
	DealPhaseOrder      DealPhase = "order"
	DealPhaseProduction DealPhase = "production"
	DealPhaseShipping   DealPhase = "shipping"
	DealPhaseCompletion DealPhase = "completion"
)

type dealStatusInfo struct {
	ordinal int
	label   string
	phase   DealPhase
}

var dealStatusTable = map[DealStatus]dealStatusInfo{
	DealStatusInquiryReceived:     {1, "inquiry received", DealPhaseQuoting},
	DealStatusQuoteRequested:      {2, "quote requested", DealPhaseQuoting},
	DealStatusAwaitingQuotes:      {3, "awaiting factory quotes", DealPhaseQuoting},
	DealStatusQuotesReceived:      {4, "factory quotes received", DealPhaseQuoting},
	DealStatusQuotePresented:      {5, "quote presented", DealPhaseQuoting},
	DealStatusQuoteUnderRevision:  {6, "quote under revision", DealPhaseQuoting},
	DealStatusQuoteApproved:       {7, "quote approved", DealPhaseQuoting},
	DealStatusContractDrafted:     {8, "contract drafted", DealPhaseQuoting},
	DealStatusContractSigned:      {9, "contract signed", DealPhaseQuoting},
	DealStatusQuotingClosed:       {10, "quoting closed", DealPhaseQuoting},
	DealStatusOrderConfirmed:      {11, "order confirmed", DealPhaseOrder},
	DealStatusDepositInvoiced:     {12, "deposit invoiced", DealPhaseOrder},
	DealStatusDepositPaid:         {13, "deposit paid", DealPhaseOrder},
	DealStatusFactoryOrderPlaced:  {14, "factory order placed", DealPhaseOrder},
	DealStatusBalanceScheduled:    {15, "balance scheduled", DealPhaseOrder},
	DealStatusProductionStarted:   {16, "production started", DealPhaseProduction},
	DealStatusSampleApproved:      {17, "sample approved", DealPhaseProduction},
	DealStatusInProduction:        {18, "in production", DealPhaseProduction},
	DealStatusProductionComplete:  {19, "production complete", DealPhaseProduction},
	DealStatusInspectionScheduled: {20, "pre-shipment inspection", DealPhaseShipping},
	DealStatusShipmentBooked:      {21, "shipment booked", DealPhaseShipping},
	DealStatusShipped:             {22, "shipped", DealPhaseShipping},
	DealStatusInCustoms:           {23, "in customs", DealPhaseShipping},
	DealStatusOutForDelivery:      {24, "out for delivery", DealPhaseShipping},
	DealStatusDelivered:           {25, "delivered", DealPhaseCompletion},
}

var validDealStatuses = func() []DealStatus {
	ordered := make([]DealStatus, len(dealStatusTable))
	for status, info := range dealStatusTable {
		ordered[info.ordinal-1] = status
	}
	return ordered
}()

// AllDealStatuses returns every code in ordinal order.
func AllDealStatuses() []DealStatus {
	out := make([]DealStatus, len(validDealStatuses))
	copy(out, validDealStatuses)
	return out
}

// String implements fmt.Stringer.
func (d DealStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DealStatus.
func (d DealStatus) IsValid() bool {
	_, ok := dealStatusTable[d]
	return ok
}

// Ordinal returns the 1-based position of the code in the lifecycle, or 0
// for an unknown code.
func (d DealStatus) Ordinal() int {
	return dealStatusTable[d].ordinal
}

// Label returns the human-readable label for the code.
func (d DealStatus) Label() string {
	return dealStatusTable[d].label
}

// Phase returns the lifecycle phase the code belongs to.
func (d DealStatus) Phase() DealPhase {
	return dealStatusTable[d].phase
}

// Before reports whether d comes strictly earlier in the lifecycle than other.
func (d DealStatus) Before(other DealStatus) bool {
	return d.Ordinal() < other.Ordinal()
}

// After reports whether d comes strictly later in the lifecycle than other.
func (d DealStatus) After(other DealStatus) bool {
	return d.Ordinal() > other.Ordinal()
}

// IsTerminal reports whether no transition out of the code is allowed.
func (d DealStatus) IsTerminal() bool {
	return d == DealStatusDelivered
}

// ParseDealStatus converts raw input into a DealStatus.
func ParseDealStatus(value string) (DealStatus, error) {
	candidate := DealStatus(value)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid deal status %q", value)
}
