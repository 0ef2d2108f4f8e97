package natsclient

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/bartossh/Mercantis/logger"
	"github.com/bartossh/Mercantis/payment"
)

// Subscriber provides functionality to pull messages from the pub/sub queue.
type Subscriber struct {
	*socket
	log logger.Logger
}

// SubscriberConnect connects subscriber to the pub/sub queue using provided config
func SubscriberConnect(cfg Config, log logger.Logger) (*Subscriber, error) {
	var s Subscriber
	var err error
	s.socket, err = connect(cfg)
	s.log = log
	return &s, err
}

// SubscribePaymentEvents subscribes to the subject and calls back with each
// decoded payment lifecycle event. Messages that fail to decode are logged
// and dropped.
func (s *Subscriber) SubscribePaymentEvents(subject string, call func(ev *payment.Event)) (*nats.Subscription, error) {
	sub, err := s.conn.Subscribe(subject, func(m *nats.Msg) {
		var ev payment.Event
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			s.log.Error(fmt.Sprintf("nats subscriber error decoding message on subject: %s, %s", subject, err.Error()))
			return
		}
		call(&ev)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}
