package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Fake is an in-memory gateway for tests and for running the API without
// Stripe credentials. Intents succeed as soon as MarkSucceeded is called.
type Fake struct {
	mu      sync.Mutex
	intents map[string]*Intent
	refunds map[string]*Refund
}

func NewFake() *Fake {
	return &Fake{
		intents: make(map[string]*Intent),
		refunds: make(map[string]*Refund),
	}
}

func (f *Fake) CreateIntent(_ context.Context, in CreateIntentInput) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := "pi_" + uuid.NewString()
	intent := &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.NewString(),
		Status:       "requires_payment_method",
	}
	f.intents[id] = intent
	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret, Status: intent.Status}, nil
}

func (f *Fake) RetrieveIntent(_ context.Context, id string) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	intent, ok := f.intents[id]
	if !ok {
		return nil, fmt.Errorf("fake gateway: no such intent %s", id)
	}
	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret, Status: intent.Status}, nil
}

func (f *Fake) CreateRefund(_ context.Context, in CreateRefundInput) (*Refund, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.intents[in.IntentID]; !ok {
		return nil, fmt.Errorf("fake gateway: no such intent %s", in.IntentID)
	}
	refund := &Refund{
		ID:          "re_" + uuid.NewString(),
		AmountCents: in.AmountCents,
		Status:      "succeeded",
	}
	f.refunds[refund.ID] = refund
	return &Refund{ID: refund.ID, AmountCents: refund.AmountCents, Status: refund.Status}, nil
}

// MarkSucceeded flips a stored intent to succeeded, standing in for the
// shopper completing payment on the processor side.
func (f *Fake) MarkSucceeded(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if intent, ok := f.intents[id]; ok {
		intent.Status = IntentStatusSucceeded
	}
}
