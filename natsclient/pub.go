package natsclient

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bartossh/Mercantis/payment"
)

var ErrUnknownEventKind = errors.New("unknown payment event kind")

// Publisher provides functionality to push messages to the pub/sub queue
type Publisher struct {
	*socket
}

// PublisherConnect connects publisher to the pub/sub queue using provided config
func PublisherConnect(cfg Config) (*Publisher, error) {
	var p Publisher
	var err error
	p.socket, err = connect(cfg)
	return &p, err
}

// PublishPaymentEvent publishes the payment lifecycle event on the subject
// matching its kind.
func (p *Publisher) PublishPaymentEvent(ev *payment.Event) error {
	subject, ok := subjectForKind(ev.Kind)
	if !ok {
		return errors.Join(ErrUnknownEventKind, fmt.Errorf("event kind [ %s ]", ev.Kind))
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(subject, msg); err != nil {
		return err
	}
	return nil
}

func subjectForKind(k payment.EventKind) (string, bool) {
	switch k {
	case payment.EventListingCreated:
		return PubSubListingCreated, true
	case payment.EventPaymentFailed:
		return PubSubPaymentFailed, true
	case payment.EventPaymentTimedOut:
		return PubSubPaymentTimedOut, true
	}
	return "", false
}
