package webhooks

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bartossh/Mercantis/httpclient"
	"github.com/bartossh/Mercantis/logger"
	"github.com/bartossh/Mercantis/payment"
)

const (
	TriggerListingCreated  byte = iota // TriggerListingCreated fires when a confirmed payment materialized a listing.
	TriggerPaymentFailed               // TriggerPaymentFailed fires when the ledger rejected the payment or the payload failed validation.
	TriggerPaymentTimedOut             // TriggerPaymentTimedOut fires when the confirmation wait budget ran out.
)

var (
	ErrorHookNotImplemented = errors.New("hook not implemented")
)

// EventMessage is the message send to the webhook url about the payment lifecycle event.
type EventMessage struct {
	Token string        `json:"token"` // Token given to the webhook by the webhooks creator to validate the message source.
	Event payment.Event `json:"event"` // Event is the payment lifecycle event that fired the hook.
}

// Hook is the hook that is used to trigger the webhook.
type Hook struct {
	URL   string `json:"address"` // URL is a url of the webhook.
	Token string `json:"token"`   // Token is the token added to the webhook to verify that the message comes from the valid source.
}

type hooks map[string]Hook

// Service provide webhook service that is used to create, remove and update webhooks.
type Service struct {
	mux    sync.RWMutex
	buffer map[byte]hooks
	log    logger.Logger
}

// New creates new instance of the webhook service.
func New(l logger.Logger) *Service {
	return &Service{
		mux:    sync.RWMutex{},
		buffer: make(map[byte]hooks),
		log:    l,
	}
}

// CreateWebhook creates new webhook or updates existing one for given trigger.
func (s *Service) CreateWebhook(trigger byte, walletAddress string, h Hook) error {
	switch trigger {
	case TriggerListingCreated, TriggerPaymentFailed, TriggerPaymentTimedOut:
		s.insertHook(trigger, walletAddress, h)
	default:
		return ErrorHookNotImplemented
	}
	return nil
}

// RemoveWebhook removes webhook for given trigger and wallet address.
func (s *Service) RemoveWebhook(trigger byte, walletAddress string) error {
	switch trigger {
	case TriggerListingCreated, TriggerPaymentFailed, TriggerPaymentTimedOut:
		s.removeHook(trigger, walletAddress)
	default:
		return ErrorHookNotImplemented
	}
	return nil
}

// PostWebhookEvent posts the payment lifecycle event to the hook the wallet
// registered for the matching trigger. Wallets without a hook are skipped.
func (s *Service) PostWebhookEvent(ev *payment.Event) {
	trigger, ok := triggerForKind(ev.Kind)
	if !ok {
		return
	}
	s.mux.RLock()
	defer s.mux.RUnlock()
	hs, ok := s.buffer[trigger]
	if !ok {
		return
	}
	h, ok := hs[ev.WalletAddress]
	if !ok {
		return
	}

	in := make(map[string]interface{})
	msg := EventMessage{
		Token: h.Token,
		Event: *ev,
	}
	if err := httpclient.MakePost(time.Second*5, h.URL, msg, &in); err != nil {
		s.log.Error(fmt.Sprintf("webhook service error posting event to webhook url: %s, %s", h.URL, err.Error()))
	}
}

func triggerForKind(k payment.EventKind) (byte, bool) {
	switch k {
	case payment.EventListingCreated:
		return TriggerListingCreated, true
	case payment.EventPaymentFailed:
		return TriggerPaymentFailed, true
	case payment.EventPaymentTimedOut:
		return TriggerPaymentTimedOut, true
	}
	return 0, false
}

func (s *Service) insertHook(trigger byte, walletAddress string, h Hook) {
	s.mux.Lock()
	defer s.mux.Unlock()
	hs, ok := s.buffer[trigger]
	if !ok {
		hs = make(hooks)
	}
	hs[walletAddress] = h
	s.buffer[trigger] = hs
}

func (s *Service) removeHook(trigger byte, walletAddress string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	hs, ok := s.buffer[trigger]
	if !ok {
		return
	}
	delete(hs, walletAddress)
}
