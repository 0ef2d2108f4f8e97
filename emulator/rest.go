package emulator

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bartossh/Mercantis/logger"
	"github.com/bartossh/Mercantis/payment"
)

const (
	Header     = "Mercantis-Ledger-Emulator"
	ApiVersion = "1.0.0"
)

const (
	SubmitURL = "/submit" // URL to submit a signed payment intent.
	StatusURL = "/status" // URL to look up transaction confirmation status.
)

// SubmitRequest carries the signed payment intent.
type SubmitRequest struct {
	Intent payment.Intent `json:"intent"`
}

// SubmitResponse carries the ledger assigned transaction id.
type SubmitResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	Err           string `json:"err,omitempty"`
}

// StatusRequest asks for confirmation status of a transaction.
type StatusRequest struct {
	TransactionID string `json:"transaction_id"`
}

// StatusResponse answers the confirmation status lookup.
type StatusResponse struct {
	Success bool              `json:"success"`
	Status  payment.TrxStatus `json:"status"`
	Err     string            `json:"err,omitempty"`
}

type app struct {
	ledger *Ledger
	log    logger.Logger
}

// Run initializes routing and runs the emulator gateway HTTP surface.
// It blocks until the context is canceled.
func Run(ctx context.Context, cfg Config, ledger *Ledger, log logger.Logger) error {
	a := &app{ledger: ledger, log: log}

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   time.Second * 5,
		WriteTimeout:  time.Second * 5,
		ServerHeader:  Header,
		AppName:       ApiVersion,
	})
	router.Use(recover.New())

	router.Post(SubmitURL, a.submit)
	router.Post(StatusURL, a.status)

	ctxx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := router.Listen(fmt.Sprintf("0.0.0.0:%v", cfg.Port)); err != nil {
			a.log.Error(fmt.Sprintf("emulator server error, %s", err.Error()))
			cancel()
		}
	}()

	<-ctxx.Done()

	return router.Shutdown()
}

func (a *app) submit(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		a.log.Error(fmt.Sprintf("emulator submit endpoint, failed to parse request body: %s", err.Error()))
		return fiber.ErrBadRequest
	}
	id, err := a.ledger.SubmitPayment(c.Context(), &req.Intent)
	if err != nil {
		a.log.Error(fmt.Sprintf("emulator submit endpoint, intent rejected: %s", err.Error()))
		return c.JSON(SubmitResponse{Success: false, Err: err.Error()})
	}
	return c.JSON(SubmitResponse{Success: true, TransactionID: id})
}

func (a *app) status(c *fiber.Ctx) error {
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		a.log.Error(fmt.Sprintf("emulator status endpoint, failed to parse request body: %s", err.Error()))
		return fiber.ErrBadRequest
	}
	status, err := a.ledger.TransactionStatus(c.Context(), req.TransactionID)
	if err != nil {
		return c.JSON(StatusResponse{Success: false, Status: payment.TrxUnknown, Err: err.Error()})
	}
	return c.JSON(StatusResponse{Success: true, Status: status})
}
