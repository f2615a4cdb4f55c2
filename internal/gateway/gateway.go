// Package gateway wraps the external payment processor behind a narrow
// interface. Amounts cross this boundary in integer minor currency units.
package gateway

import "context"

// IntentStatusSucceeded is the processor status that permits confirmation.
const IntentStatusSucceeded = "succeeded"

// Intent is the locally modeled view of a processor payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

type Refund struct {
	ID          string
	AmountCents int64
	Status      string
}

type CreateIntentInput struct {
	AmountCents  int64
	Currency     string
	OrderID      string
	OrderNumber  string
	UserID       string
	ReceiptEmail string
}

type CreateRefundInput struct {
	IntentID    string
	AmountCents int64
	Reason      string
}

// PaymentGateway is the capability set the state machine needs from the
// processor. Implementations never touch the order store.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, in CreateIntentInput) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	CreateRefund(ctx context.Context, in CreateRefundInput) (*Refund, error)
}
