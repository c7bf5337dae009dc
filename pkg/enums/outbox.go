package enums

// OutboxEventType names the domain events the core emits for downstream
// collaborators (chat, notification email) to consume.
type OutboxEventType string

const (
	EventDealStatusChanged    OutboxEventType = "deal.status_changed"
	EventQuotingWinnerChosen  OutboxEventType = "quoting.winner_selected"
	EventQuoteApproved        OutboxEventType = "quote.approved"
	EventPaymentStatusChanged OutboxEventType = "payment.status_changed"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateDeal              OutboxAggregateType = "deal"
	AggregateFactoryAssignment OutboxAggregateType = "factory_assignment"
	AggregateQuote             OutboxAggregateType = "quote"
	AggregatePayment           OutboxAggregateType = "payment"
)
