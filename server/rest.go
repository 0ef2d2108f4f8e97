package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/payment"
	"github.com/bartossh/Mercantis/webhooks"
)

// AliveResponse is a response for alive and version check.
type AliveResponse struct {
	APIVersion string `json:"api_version"`
	APIHeader  string `json:"api_header"`
	Alive      bool   `json:"alive"`
}

func (s *server) alive(c *fiber.Ctx) error {
	return c.JSON(
		AliveResponse{
			Alive:      true,
			APIVersion: ApiVersion,
			APIHeader:  Header,
		})
}

// CreatePaymentRequest carries the listing payload and the signed payment
// intent that pays for it.
type CreatePaymentRequest struct {
	Payload listing.Payload `json:"payload"`
	Intent  payment.Intent  `json:"intent"`
}

// CreatePaymentResponse carries the ledger assigned transaction id the caller
// can track the payment by.
type CreatePaymentResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	Err           string `json:"err,omitempty"`
}

func (s *server) paymentCreate(c *fiber.Ctx) error {
	var req CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		s.log.Error(fmt.Sprintf("payment create endpoint, failed to parse request body: %s", err.Error()))
		return fiber.ErrBadRequest
	}

	if req.Payload.WalletAddress == "" || req.Intent.WalletAddress == "" {
		s.log.Error("wrong JSON format for payment create")
		return fiber.ErrBadRequest
	}

	if err := req.Intent.Verify(&req.Payload, s.verifier); err != nil {
		s.log.Error(fmt.Sprintf("payment create endpoint, intent verification failed for address: %s, %s", req.Intent.WalletAddress, err.Error()))
		return fiber.ErrForbidden
	}

	if err := req.Payload.Validate(); err != nil {
		s.log.Error(fmt.Sprintf("payment create endpoint, invalid payload for address: %s, %s", req.Payload.WalletAddress, err.Error()))
		return c.JSON(CreatePaymentResponse{Success: false, Err: err.Error()})
	}

	id, err := s.gateway.SubmitPayment(c.Context(), &req.Intent)
	if err != nil {
		s.log.Error(fmt.Sprintf("payment create endpoint, ledger rejected submission for address: %s, %s", req.Intent.WalletAddress, err.Error()))
		return c.JSON(CreatePaymentResponse{Success: false, Err: err.Error()})
	}

	pt := payment.PendingTransaction{
		WalletAddress: req.Intent.WalletAddress,
		TransactionID: id,
		Payload:       req.Payload,
		Status:        payment.StatusSubmitted,
		CreatedAt:     time.Now(),
	}
	if err := s.store.WritePendingTransaction(c.Context(), &pt); err != nil {
		s.log.Error(fmt.Sprintf("payment create endpoint, failed to persist pending transaction: %s", err.Error()))
		return fiber.ErrInternalServerError
	}

	// the watcher outlives this request
	s.watcher.Watch(s.watchCtx, pt)

	return c.JSON(CreatePaymentResponse{Success: true, TransactionID: id})
}

// PaymentStatusRequest asks for the pending transaction of a wallet.
type PaymentStatusRequest struct {
	WalletAddress string `json:"wallet_address"`
}

// PaymentStatusResponse answers with the pending transaction when one exists.
type PaymentStatusResponse struct {
	Success bool                       `json:"success"`
	Exists  bool                       `json:"exists"`
	Pending payment.PendingTransaction `json:"pending,omitempty"`
}

func (s *server) paymentStatus(c *fiber.Ctx) error {
	var req PaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		s.log.Error(fmt.Sprintf("payment status endpoint, failed to parse request body: %s", err.Error()))
		return fiber.ErrBadRequest
	}
	if req.WalletAddress == "" {
		s.log.Error("wrong JSON format for payment status")
		return fiber.ErrBadRequest
	}

	pt, ok, err := s.store.ReadPendingTransaction(c.Context(), req.WalletAddress)
	if err != nil {
		s.log.Error(fmt.Sprintf("payment status endpoint, failed to read pending transaction: %s", err.Error()))
		return fiber.ErrInternalServerError
	}

	return c.JSON(PaymentStatusResponse{Success: true, Exists: ok, Pending: pt})
}

// PaymentAbandonRequest asks to abandon the unconfirmed payment of a wallet.
type PaymentAbandonRequest struct {
	WalletAddress string `json:"wallet_address"`
}

// PaymentAbandonResponse tells if an attempt was abandoned.
type PaymentAbandonResponse struct {
	Success   bool   `json:"success"`
	Abandoned bool   `json:"abandoned"`
	Err       string `json:"err,omitempty"`
}

func (s *server) paymentAbandon(c *fiber.Ctx) error {
	var req PaymentAbandonRequest
	if err := c.BodyParser(&req); err != nil {
		s.log.Error(fmt.Sprintf("payment abandon endpoint, failed to parse request body: %s", err.Error()))
		return fiber.ErrBadRequest
	}
	if req.WalletAddress == "" {
		s.log.Error("wrong JSON format for payment abandon")
		return fiber.ErrBadRequest
	}

	abandoned, err := s.watcher.Abandon(c.Context(), req.WalletAddress)
	if err != nil {
		s.log.Error(fmt.Sprintf("payment abandon endpoint, abandonment rejected for address: %s, %s", req.WalletAddress, err.Error()))
		return c.JSON(PaymentAbandonResponse{Success: false, Err: err.Error()})
	}

	return c.JSON(PaymentAbandonResponse{Success: true, Abandoned: abandoned})
}

// SearchListingsRequest carries the listings search filters.
type SearchListingsRequest struct {
	Filters listing.Filters `json:"filters"`
}

// SearchListingsResponse is a response for listings search.
type SearchListingsResponse struct {
	Success  bool              `json:"success"`
	Listings []listing.Listing `json:"listings"`
}

func (s *server) searchListings(c *fiber.Ctx) error {
	var req SearchListingsRequest
	if err := c.BodyParser(&req); err != nil {
		s.log.Error(fmt.Sprintf("search listings endpoint, failed to parse request body: %s", err.Error()))
		return fiber.ErrBadRequest
	}

	results, err := s.listings.ReadListings(c.Context(), &req.Filters)
	if err != nil {
		s.log.Error(fmt.Sprintf("search listings endpoint, failed to read listings: %s", err.Error()))
		return fiber.ErrInternalServerError
	}

	return c.JSON(SearchListingsResponse{Success: true, Listings: results})
}

// DeduplicateResponse summarizes the deduplication sweep.
type DeduplicateResponse struct {
	Success              bool `json:"success"`
	RemovedByTransaction int  `json:"removed_by_transaction"`
	RemovedByContent     int  `json:"removed_by_content"`
}

func (s *server) deduplicate(c *fiber.Ctx) error {
	report, err := s.dedup.Sweep(c.Context())
	if err != nil {
		s.log.Error(fmt.Sprintf("deduplicate endpoint, sweep failed: %s", err.Error()))
		return fiber.ErrInternalServerError
	}

	return c.JSON(DeduplicateResponse{
		Success:              true,
		RemovedByTransaction: report.RemovedByTransaction,
		RemovedByContent:     report.RemovedByContent,
	})
}

// CreateWebhookRequest registers a hook fired on the payment event trigger
// for the wallet address.
type CreateWebhookRequest struct {
	Trigger       byte          `json:"trigger"`
	WalletAddress string        `json:"wallet_address"`
	Hook          webhooks.Hook `json:"hook"`
}

// WebhookResponse is a response for webhook create and remove.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Err     string `json:"err,omitempty"`
}

func (s *server) webhookCreate(c *fiber.Ctx) error {
	var req CreateWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		s.log.Error(fmt.Sprintf("webhook create endpoint, failed to parse request body: %s", err.Error()))
		return fiber.ErrBadRequest
	}
	if req.WalletAddress == "" || req.Hook.URL == "" {
		s.log.Error("wrong JSON format for webhook create")
		return fiber.ErrBadRequest
	}

	if err := s.hooks.CreateWebhook(req.Trigger, req.WalletAddress, req.Hook); err != nil {
		s.log.Error(fmt.Sprintf("webhook create endpoint, failed to create webhook: %s", err.Error()))
		return c.JSON(WebhookResponse{Success: false, Err: err.Error()})
	}

	return c.JSON(WebhookResponse{Success: true})
}

// RemoveWebhookRequest removes the hook of the wallet address for the trigger.
type RemoveWebhookRequest struct {
	Trigger       byte   `json:"trigger"`
	WalletAddress string `json:"wallet_address"`
}

func (s *server) webhookRemove(c *fiber.Ctx) error {
	var req RemoveWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		s.log.Error(fmt.Sprintf("webhook remove endpoint, failed to parse request body: %s", err.Error()))
		return fiber.ErrBadRequest
	}
	if req.WalletAddress == "" {
		s.log.Error("wrong JSON format for webhook remove")
		return fiber.ErrBadRequest
	}

	if err := s.hooks.RemoveWebhook(req.Trigger, req.WalletAddress); err != nil {
		s.log.Error(fmt.Sprintf("webhook remove endpoint, failed to remove webhook: %s", err.Error()))
		return c.JSON(WebhookResponse{Success: false, Err: err.Error()})
	}

	return c.JSON(WebhookResponse{Success: true})
}
