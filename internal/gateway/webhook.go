package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79/webhook"
)

// Event kinds the verifier routes to payment transitions. Anything else is
// acknowledged without effect.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// ErrSignature is returned when the webhook payload does not match its
// signature header. Callers must reject the request without applying any
// transition.
var ErrSignature = errors.New("invalid webhook signature")

// Event is a verified processor notification.
type Event struct {
	Type     string
	IntentID string
}

// Verifier checks inbound webhook signatures against the shared secret.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify validates the signature header over the raw payload and decodes the
// event. For the two payment events it extracts the intent identifier;
// unrecognized event types come back with an empty IntentID.
func (v *Verifier) Verify(payload []byte, sigHeader string) (*Event, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, v.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}

	eventType := string(ev.Type)
	switch eventType {
	case EventPaymentSucceeded, EventPaymentFailed:
		var object struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(ev.Data.Raw, &object); err != nil {
			return nil, fmt.Errorf("decode event object: %w", err)
		}
		if object.ID == "" {
			return nil, fmt.Errorf("event %s has no intent id", eventType)
		}
		return &Event{Type: eventType, IntentID: object.ID}, nil
	default:
		return &Event{Type: eventType}, nil
	}
}
