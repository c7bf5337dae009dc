package lifecycle

import (
	"testing"

	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
	apperrors "github.com/bingbai-ux/baoflow-backend/pkg/errors"
)

func TestCheckTransitionForwardMoves(t *testing.T) {
	cases := []struct {
		from, to enums.DealStatus
	}{
		{enums.DealStatusInquiryReceived, enums.DealStatusQuoteRequested},
		{enums.DealStatusInquiryReceived, enums.DealStatusQuotePresented}, // skip ahead
		{enums.DealStatusQuotingClosed, enums.DealStatusOrderConfirmed},   // phase boundary
		{enums.DealStatusOutForDelivery, enums.DealStatusDelivered},
	}
	for _, tc := range cases {
		if err := CheckTransition(tc.from, tc.to); err != nil {
			t.Fatalf("%s -> %s should be allowed: %v", tc.from, tc.to, err)
		}
	}
}

func TestCheckTransitionRefinements(t *testing.T) {
	allowed := []struct {
		from, to enums.DealStatus
	}{
		{enums.DealStatusQuotesReceived, enums.DealStatusAwaitingQuotes},
		{enums.DealStatusQuoteUnderRevision, enums.DealStatusQuotePresented},
		{enums.DealStatusShipmentBooked, enums.DealStatusInspectionScheduled},
	}
	for _, tc := range allowed {
		if err := CheckTransition(tc.from, tc.to); err != nil {
			t.Fatalf("refinement %s -> %s should be allowed: %v", tc.from, tc.to, err)
		}
		if !IsRefinement(tc.from, tc.to) {
			t.Fatalf("%s -> %s should report as refinement", tc.from, tc.to)
		}
	}

	// arbitrary backward moves stay forbidden
	denied := []struct {
		from, to enums.DealStatus
	}{
		{enums.DealStatusOrderConfirmed, enums.DealStatusQuotingClosed},
		{enums.DealStatusShipped, enums.DealStatusShipmentBooked},
		{enums.DealStatusQuotesReceived, enums.DealStatusQuoteRequested},
	}
	for _, tc := range denied {
		err := CheckTransition(tc.from, tc.to)
		typed := apperrors.As(err)
		if typed == nil || typed.Code() != apperrors.CodeStateConflict {
			t.Fatalf("%s -> %s: expected state conflict, got %v", tc.from, tc.to, err)
		}
	}
}

func TestCheckTransitionSameStatus(t *testing.T) {
	err := CheckTransition(enums.DealStatusInProduction, enums.DealStatusInProduction)
	typed := apperrors.As(err)
	if typed == nil || typed.Code() != apperrors.CodeStateConflict {
		t.Fatalf("expected state conflict for no-op transition, got %v", err)
	}
}

func TestCheckTransitionTerminal(t *testing.T) {
	err := CheckTransition(enums.DealStatusDelivered, enums.DealStatusInquiryReceived)
	typed := apperrors.As(err)
	if typed == nil || typed.Code() != apperrors.CodeStateConflict {
		t.Fatalf("expected state conflict out of terminal status, got %v", err)
	}
}

func TestCheckTransitionUnknownStatus(t *testing.T) {
	err := CheckTransition(enums.DealStatus("M99"), enums.DealStatusQuoteRequested)
	typed := apperrors.As(err)
	if typed == nil || typed.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}
