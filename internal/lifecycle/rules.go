package lifecycle

import (
	"fmt"

	apperrors "github.com/bingbai-ux/baoflow-backend/pkg/errors"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
)

// refinements whitelists the only backward moves allowed: small same-phase
// corrections an operator makes when an upstream step has to be redone.
var refinements = map[enums.DealStatus]enums.DealStatus{
	enums.DealStatusQuotesReceived:     enums.DealStatusAwaitingQuotes,      // M04 -> M03
	enums.DealStatusQuoteUnderRevision: enums.DealStatusQuotePresented,      // M06 -> M05
	enums.DealStatusShipmentBooked:     enums.DealStatusInspectionScheduled, // M21 -> M20
}

// CheckTransition decides whether a deal may move from one status to another.
// Forward moves are always allowed, including skips; backward moves only when
// whitelisted as a refinement; the terminal status admits no exit.
func CheckTransition(from, to enums.DealStatus) error {
	if !from.IsValid() || !to.IsValid() {
		return apperrors.New(apperrors.CodeValidation,
			fmt.Sprintf("unknown status in transition %s -> %s", from, to))
	}
	if from.IsTerminal() {
		return apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("deal already %s; no further transitions", from.Label()))
	}
	if to == from {
		return apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("deal is already in status %s", from))
	}
	if to.Before(from) {
		if allowed, ok := refinements[from]; ok && allowed == to {
			return nil
		}
		return apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("backward transition %s -> %s is not allowed", from, to))
	}
	return nil
}

// IsRefinement reports whether the move is one of the whitelisted backward
// corrections rather than normal forward progress.
func IsRefinement(from, to enums.DealStatus) bool {
	allowed, ok := refinements[from]
	return ok && allowed == to
}
