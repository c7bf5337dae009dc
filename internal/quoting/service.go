// Package quoting runs competitive quoting: inviting factories, recording
// their responses, versioning priced quotes and selecting exactly one winner
// per deal.
package quoting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bingbai-ux/baoflow-backend/internal/lifecycle"
	"github.com/bingbai-ux/baoflow-backend/internal/pricing"
	"github.com/bingbai-ux/baoflow-backend/pkg/config"
	"github.com/bingbai-ux/baoflow-backend/pkg/db/models"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
	apperrors "github.com/bingbai-ux/baoflow-backend/pkg/errors"
	"github.com/bingbai-ux/baoflow-backend/pkg/logger"
	"github.com/bingbai-ux/baoflow-backend/pkg/metrics"
	"github.com/bingbai-ux/baoflow-backend/pkg/outbox"
)

// TxRunner is the transactional boundary all coordinator writes run in.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// DealStore is the slice of deal persistence the coordinator needs to move
// deal status alongside assignment changes in one transaction.
type DealStore interface {
	GetDealForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Deal, error)
	UpdateStatus(tx *gorm.DB, dealID uuid.UUID, from, to enums.DealStatus) error
	InsertTransition(tx *gorm.DB, row *models.StatusTransition) error
}

// AssignmentStore is the persistence surface for assignments and quotes.
type AssignmentStore interface {
	CreateAssignment(tx *gorm.DB, row *models.FactoryAssignment) error
	ListLiveAssignments(tx *gorm.DB, dealID uuid.UUID) ([]models.FactoryAssignment, error)
	GetLiveAssignment(tx *gorm.DB, dealID, factoryID uuid.UUID) (*models.FactoryAssignment, error)
	MarkResponded(tx *gorm.DB, id uuid.UUID, at time.Time) error
	MarkSelected(tx *gorm.DB, id uuid.UUID, at time.Time) error
	RejectSiblings(tx *gorm.DB, dealID, winnerID uuid.UUID, at time.Time) error
	SetDealFactory(tx *gorm.DB, dealID, factoryID uuid.UUID) error
	MaxQuoteVersion(tx *gorm.DB, dealID uuid.UUID) (int, error)
	CreateQuote(tx *gorm.DB, row *models.Quote) error
	GetQuoteForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Quote, error)
	MarkQuoteApproved(tx *gorm.DB, id uuid.UUID, at time.Time) error
	ListAssignments(ctx context.Context, dealID uuid.UUID) ([]models.FactoryAssignment, error)
	ListQuotes(ctx context.Context, dealID uuid.UUID) ([]models.Quote, error)
}

// Emitter appends outbox events inside the caller's transaction.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// RateSource resolves the exchange rate for quote pricing.
type RateSource interface {
	Rate(ctx context.Context) decimal.Decimal
}

type Coordinator struct {
	tx      TxRunner
	deals   DealStore
	repo    AssignmentStore
	events  Emitter
	rates   RateSource
	billing config.BillingConfig
	logg    *logger.Logger
	metrics *metrics.LifecycleMetrics
	now     func() time.Time
}

func NewCoordinator(tx TxRunner, deals DealStore, repo AssignmentStore, events Emitter, rates RateSource, billing config.BillingConfig, logg *logger.Logger, m *metrics.LifecycleMetrics) (*Coordinator, error) {
	if tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if deals == nil {
		return nil, errors.New("deal store is required")
	}
	if repo == nil {
		return nil, errors.New("assignment store is required")
	}
	if events == nil {
		return nil, errors.New("outbox emitter is required")
	}
	if rates == nil {
		return nil, errors.New("rate source is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Coordinator{
		tx:      tx,
		deals:   deals,
		repo:    repo,
		events:  events,
		rates:   rates,
		billing: billing,
		logg:    logg,
		metrics: m,
		now:     time.Now,
	}, nil
}

type statusChangedPayload struct {
	DealCode   string           `json:"deal_code"`
	FromStatus enums.DealStatus `json:"from_status"`
	ToStatus   enums.DealStatus `json:"to_status"`
	Phase      enums.DealPhase  `json:"phase"`
}

// moveDeal advances the deal inside the caller's transaction, writing the
// audit row and status event alongside whatever quoting change triggered it.
func (c *Coordinator) moveDeal(ctx context.Context, tx *gorm.DB, deal *models.Deal, target enums.DealStatus, actorID uuid.UUID) error {
	if err := lifecycle.CheckTransition(deal.Status, target); err != nil {
		return err
	}
	if err := c.deals.UpdateStatus(tx, deal.ID, deal.Status, target); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.CodeConflict, "deal status changed concurrently")
		}
		return apperrors.Wrap(apperrors.CodeInternal, err, "updating deal status")
	}
	transition := &models.StatusTransition{
		ID:         uuid.New(),
		DealID:     deal.ID,
		FromStatus: deal.Status,
		ToStatus:   target,
		ActorID:    actorID,
	}
	if err := c.deals.InsertTransition(tx, transition); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "recording status transition")
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventDealStatusChanged,
		AggregateType: enums.AggregateDeal,
		AggregateID:   deal.ID,
		Actor:         &outbox.ActorRef{ActorID: actorID},
		Data: statusChangedPayload{
			DealCode:   deal.Code,
			FromStatus: deal.Status,
			ToStatus:   target,
			Phase:      target.Phase(),
		},
		Version: 1,
	}
	if err := c.events.Emit(ctx, tx, event); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "queueing status change event")
	}
	deal.Status = target
	c.metrics.IncTransition(string(target.Phase()))
	return nil
}

func (c *Coordinator) loadDealForUpdate(tx *gorm.DB, dealID uuid.UUID) (*models.Deal, error) {
	deal, err := c.deals.GetDealForUpdate(tx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "deal not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading deal")
	}
	return deal, nil
}

type InviteFactoriesInput struct {
	DealID     uuid.UUID
	FactoryIDs []uuid.UUID
	ActorID    uuid.UUID
}

func (in InviteFactoriesInput) validate() error {
	if in.DealID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "deal id is required")
	}
	if in.ActorID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "actor id is required")
	}
	if len(in.FactoryIDs) == 0 {
		return apperrors.New(apperrors.CodeValidation, "at least one factory id is required")
	}
	for _, id := range in.FactoryIDs {
		if id == uuid.Nil {
			return apperrors.New(apperrors.CodeValidation, "factory ids must not be empty")
		}
	}
	return nil
}

// InviteFactories invites factories to quote on the deal. Factories already
// holding a live assignment are skipped, so re-sending an invite list is
// safe. The competitive flag is derived from the live pool after the merge:
// more than one live assignment means competitive. A deal still at the
// inquiry status moves to quote requested. Once a winner has been selected
// the pool is closed and new invites are rejected.
func (c *Coordinator) InviteFactories(ctx context.Context, in InviteFactoriesInput) ([]models.FactoryAssignment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var result []models.FactoryAssignment
	err := c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deal, err := c.loadDealForUpdate(tx, in.DealID)
		if err != nil {
			return err
		}
		if deal.Status.Phase() != enums.DealPhaseQuoting {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("factories can only be invited during quoting, deal is %s", deal.Status))
		}

		existing, err := c.repo.ListLiveAssignments(tx, deal.ID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "listing assignments")
		}
		invited := make(map[uuid.UUID]bool, len(existing))
		for _, assignment := range existing {
			if assignment.Status == enums.AssignmentStatusSelected {
				return apperrors.New(apperrors.CodeStateConflict, "winner already selected for this deal")
			}
			invited[assignment.FactoryID] = true
		}

		newIDs := make([]uuid.UUID, 0, len(in.FactoryIDs))
		for _, factoryID := range in.FactoryIDs {
			if invited[factoryID] {
				continue
			}
			invited[factoryID] = true
			newIDs = append(newIDs, factoryID)
		}

		competitive := len(invited) > 1
		for _, factoryID := range newIDs {
			assignment := &models.FactoryAssignment{
				ID:          uuid.New(),
				DealID:      deal.ID,
				FactoryID:   factoryID,
				Status:      enums.AssignmentStatusRequesting,
				Competitive: competitive,
			}
			if err := c.repo.CreateAssignment(tx, assignment); err != nil {
				return apperrors.Wrap(apperrors.CodeConflict, err, "creating assignment")
			}
		}

		if len(newIDs) > 0 && deal.Status == enums.DealStatusInquiryReceived {
			if err := c.moveDeal(ctx, tx, deal, enums.DealStatusQuoteRequested, in.ActorID); err != nil {
				return err
			}
		}

		result, err = c.repo.ListLiveAssignments(tx, deal.ID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "listing assignments")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := c.logg.WithDealID(ctx, in.DealID.String())
	c.logg.Info(logCtx, "factories invited")
	return result, nil
}

type RecordResponseInput struct {
	DealID    uuid.UUID
	FactoryID uuid.UUID
	ActorID   uuid.UUID
}

// RecordFactoryResponse marks an invited factory as having responded. A
// repeated response is a no-op; responding after a winner exists is an error.
func (c *Coordinator) RecordFactoryResponse(ctx context.Context, in RecordResponseInput) (*models.FactoryAssignment, error) {
	if in.DealID == uuid.Nil || in.FactoryID == uuid.Nil || in.ActorID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "deal id, factory id and actor id are required")
	}

	var updated *models.FactoryAssignment
	err := c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deal, err := c.loadDealForUpdate(tx, in.DealID)
		if err != nil {
			return err
		}
		assignment, err := c.repo.GetLiveAssignment(tx, deal.ID, in.FactoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "factory is not invited on this deal")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading assignment")
		}

		switch assignment.Status {
		case enums.AssignmentStatusResponded:
			updated = assignment
			return nil
		case enums.AssignmentStatusSelected:
			return apperrors.New(apperrors.CodeStateConflict, "winner already selected for this deal")
		}

		at := c.now()
		if err := c.repo.MarkResponded(tx, assignment.ID, at); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "recording response")
		}
		assignment.Status = enums.AssignmentStatusResponded
		assignment.RespondedAt = &at

		if deal.Status.Phase() == enums.DealPhaseQuoting && deal.Status.Before(enums.DealStatusQuotesReceived) {
			if err := c.moveDeal(ctx, tx, deal, enums.DealStatusQuotesReceived, in.ActorID); err != nil {
				return err
			}
		}

		updated = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type SelectWinnerInput struct {
	DealID    uuid.UUID
	FactoryID uuid.UUID
	ActorID   uuid.UUID
}

type winnerChosenPayload struct {
	DealCode  string    `json:"deal_code"`
	DealID    uuid.UUID `json:"deal_id"`
	FactoryID uuid.UUID `json:"factory_id"`
}

// SelectWinner picks one responded factory as the deal's supplier, rejecting
// every other live assignment in the same transaction. Selecting the already
// chosen factory again is a no-op; any other second selection conflicts.
func (c *Coordinator) SelectWinner(ctx context.Context, in SelectWinnerInput) (*models.FactoryAssignment, error) {
	if in.DealID == uuid.Nil || in.FactoryID == uuid.Nil || in.ActorID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "deal id, factory id and actor id are required")
	}

	var (
		winner     *models.FactoryAssignment
		idempotent bool
	)
	err := c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deal, err := c.loadDealForUpdate(tx, in.DealID)
		if err != nil {
			return err
		}
		if deal.Status.Ordinal() >= enums.DealStatusProductionStarted.Ordinal() {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("cannot change the factory once production started, deal is %s", deal.Status))
		}

		assignments, err := c.repo.ListLiveAssignments(tx, deal.ID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "listing assignments")
		}

		var candidate *models.FactoryAssignment
		for i := range assignments {
			assignment := &assignments[i]
			if assignment.Status == enums.AssignmentStatusSelected {
				if assignment.FactoryID == in.FactoryID {
					winner = assignment
					idempotent = true
					return nil
				}
				return apperrors.New(apperrors.CodeConflict, "a winner is already selected for this deal")
			}
			if assignment.FactoryID == in.FactoryID {
				candidate = assignment
			}
		}
		if candidate == nil {
			return apperrors.New(apperrors.CodeNotFound, "factory is not invited on this deal")
		}
		if candidate.Status != enums.AssignmentStatusResponded {
			return apperrors.New(apperrors.CodeStateConflict, "factory has not responded to the quote request")
		}

		at := c.now()
		if err := c.repo.MarkSelected(tx, candidate.ID, at); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeConflict, "assignment changed concurrently")
			}
			return apperrors.Wrap(apperrors.CodeConflict, err, "selecting winner")
		}
		if err := c.repo.RejectSiblings(tx, deal.ID, candidate.ID, at); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "rejecting sibling assignments")
		}
		if err := c.repo.SetDealFactory(tx, deal.ID, candidate.FactoryID); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "assigning factory to deal")
		}
		candidate.Status = enums.AssignmentStatusSelected
		candidate.DecidedAt = &at

		if deal.Status.Before(enums.DealStatusQuotePresented) {
			if err := c.moveDeal(ctx, tx, deal, enums.DealStatusQuotePresented, in.ActorID); err != nil {
				return err
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventQuotingWinnerChosen,
			AggregateType: enums.AggregateFactoryAssignment,
			AggregateID:   candidate.ID,
			Actor:         &outbox.ActorRef{ActorID: in.ActorID},
			Data: winnerChosenPayload{
				DealCode:  deal.Code,
				DealID:    deal.ID,
				FactoryID: candidate.FactoryID,
			},
			Version: 1,
		}
		if err := c.events.Emit(ctx, tx, event); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "queueing winner event")
		}

		winner = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !idempotent {
		c.metrics.IncSelection()
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"deal_id":    in.DealID.String(),
			"factory_id": in.FactoryID.String(),
		})
		c.logg.Info(logCtx, "quoting winner selected")
	}
	return winner, nil
}

type SubmitQuoteInput struct {
	DealID      uuid.UUID
	FactoryID   uuid.UUID
	ActorID     uuid.UUID
	Quantity    int64
	UnitPrice   decimal.Decimal
	ToolingFee  decimal.Decimal
	ShippingFee decimal.Decimal
	OtherFees   decimal.Decimal
	// CostRatio falls back to the configured default when zero.
	CostRatio decimal.Decimal
}

// SubmitQuote prices and stores the next quote version for the deal. The
// exchange rate is resolved at submission time and frozen on the row.
// Submitting a quote counts as the factory's response.
func (c *Coordinator) SubmitQuote(ctx context.Context, in SubmitQuoteInput) (*models.Quote, error) {
	if in.DealID == uuid.Nil || in.FactoryID == uuid.Nil || in.ActorID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "deal id, factory id and actor id are required")
	}

	ratio := in.CostRatio
	if ratio.IsZero() {
		ratio = c.billing.DefaultCostRatio
	}
	rate := c.rates.Rate(ctx)

	inputs := pricing.Inputs{
		Quantity:       in.Quantity,
		UnitPrice:      in.UnitPrice,
		ToolingFee:     in.ToolingFee,
		ShippingFee:    in.ShippingFee,
		OtherFees:      in.OtherFees,
		CostRatio:      ratio,
		ExchangeRate:   rate,
		TaxRatePercent: c.billing.TaxRatePercent,
	}
	result, err := pricing.Calculate(inputs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "pricing quote")
	}

	var quote *models.Quote
	err = c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deal, err := c.loadDealForUpdate(tx, in.DealID)
		if err != nil {
			return err
		}
		if deal.Status.Phase() != enums.DealPhaseQuoting {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("quotes can only be submitted during quoting, deal is %s", deal.Status))
		}

		assignment, err := c.repo.GetLiveAssignment(tx, deal.ID, in.FactoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "factory is not invited on this deal")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading assignment")
		}

		if assignment.Status == enums.AssignmentStatusRequesting {
			at := c.now()
			if err := c.repo.MarkResponded(tx, assignment.ID, at); err != nil {
				return apperrors.Wrap(apperrors.CodeInternal, err, "recording response")
			}
			if deal.Status.Before(enums.DealStatusQuotesReceived) {
				if err := c.moveDeal(ctx, tx, deal, enums.DealStatusQuotesReceived, in.ActorID); err != nil {
					return err
				}
			}
		}

		version, err := c.repo.MaxQuoteVersion(tx, deal.ID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "allocating quote version")
		}

		quote = &models.Quote{
			ID:        uuid.New(),
			DealID:    deal.ID,
			FactoryID: in.FactoryID,
			Version:   version + 1,
			Quantity:  in.Quantity,

			UnitPrice:   in.UnitPrice,
			ToolingFee:  in.ToolingFee,
			ShippingFee: in.ShippingFee,
			OtherFees:   in.OtherFees,
			CostRatio:   ratio,

			ExchangeRate:   rate,
			TaxRatePercent: c.billing.TaxRatePercent,

			ProductCost:        result.ProductCost,
			TotalCost:          result.TotalCost,
			UnitCost:           result.UnitCost,
			SellingPriceSource: result.SellingPriceSource,
			SellingPriceTarget: result.SellingPriceTarget,
			BillingPreTax:      result.BillingPreTax,
			BillingWithTax:     result.BillingWithTax,
			GrossProfitSource:  result.GrossProfitSource,
			GrossProfitMargin:  result.GrossProfitMargin,

			Status: enums.QuoteStatusSubmitted,
		}
		if err := c.repo.CreateQuote(tx, quote); err != nil {
			return apperrors.Wrap(apperrors.CodeConflict, err, "storing quote")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"deal_id":       in.DealID.String(),
		"factory_id":    in.FactoryID.String(),
		"quote_version": quote.Version,
	})
	c.logg.Info(logCtx, "quote submitted")
	return quote, nil
}

type ApproveQuoteInput struct {
	QuoteID uuid.UUID
	ActorID uuid.UUID
}

type quoteApprovedPayload struct {
	DealID  uuid.UUID `json:"deal_id"`
	QuoteID uuid.UUID `json:"quote_id"`
	Version int       `json:"version"`
}

// ApproveQuote freezes a submitted quote. Approving an approved quote is a
// no-op; draft quotes cannot be approved.
func (c *Coordinator) ApproveQuote(ctx context.Context, in ApproveQuoteInput) (*models.Quote, error) {
	if in.QuoteID == uuid.Nil || in.ActorID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "quote id and actor id are required")
	}

	var approved *models.Quote
	err := c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		quote, err := c.repo.GetQuoteForUpdate(tx, in.QuoteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "quote not found")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading quote")
		}

		if quote.Status == enums.QuoteStatusApproved {
			approved = quote
			return nil
		}
		if quote.Status != enums.QuoteStatusSubmitted {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("only submitted quotes can be approved, quote is %s", quote.Status))
		}

		at := c.now()
		if err := c.repo.MarkQuoteApproved(tx, quote.ID, at); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeConflict, "quote changed concurrently")
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "approving quote")
		}
		quote.Status = enums.QuoteStatusApproved
		quote.ApprovedAt = &at

		deal, err := c.loadDealForUpdate(tx, quote.DealID)
		if err != nil {
			return err
		}
		if deal.Status.Phase() == enums.DealPhaseQuoting && deal.Status.Before(enums.DealStatusQuoteApproved) {
			if err := c.moveDeal(ctx, tx, deal, enums.DealStatusQuoteApproved, in.ActorID); err != nil {
				return err
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventQuoteApproved,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			Actor:         &outbox.ActorRef{ActorID: in.ActorID},
			Data: quoteApprovedPayload{
				DealID:  quote.DealID,
				QuoteID: quote.ID,
				Version: quote.Version,
			},
			Version: 1,
		}
		if err := c.events.Emit(ctx, tx, event); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "queueing quote approved event")
		}

		approved = quote
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// Candidate is a ranked factory in the advisory quoting comparison.
type Candidate struct {
	FactoryID    uuid.UUID              `json:"factory_id"`
	Status       enums.AssignmentStatus `json:"status"`
	QuoteID      uuid.UUID              `json:"quote_id"`
	QuoteVersion int                    `json:"quote_version"`
	UnitCost     decimal.Decimal        `json:"unit_cost"`
	TotalCost    decimal.Decimal        `json:"total_cost"`
}

// RankCandidates orders the deal's responding factories by their latest
// quoted unit cost, cheapest first. Purely advisory: the ranking never picks
// a winner on its own.
func (c *Coordinator) RankCandidates(ctx context.Context, dealID uuid.UUID) ([]Candidate, error) {
	if dealID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "deal id is required")
	}

	assignments, err := c.repo.ListAssignments(ctx, dealID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing assignments")
	}
	quotes, err := c.repo.ListQuotes(ctx, dealID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing quotes")
	}

	// quotes arrive newest version first, so the first hit per factory is
	// its latest
	latest := make(map[uuid.UUID]*models.Quote)
	for i := range quotes {
		quote := &quotes[i]
		if _, ok := latest[quote.FactoryID]; !ok {
			latest[quote.FactoryID] = quote
		}
	}

	candidates := make([]Candidate, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.Status == enums.AssignmentStatusRejected {
			continue
		}
		quote, ok := latest[assignment.FactoryID]
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			FactoryID:    assignment.FactoryID,
			Status:       assignment.Status,
			QuoteID:      quote.ID,
			QuoteVersion: quote.Version,
			UnitCost:     quote.UnitCost,
			TotalCost:    quote.TotalCost,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].UnitCost.LessThan(candidates[j].UnitCost)
	})
	return candidates, nil
}
