package ledgerclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bartossh/Mercantis/emulator"
	"github.com/bartossh/Mercantis/httpclient"
	"github.com/bartossh/Mercantis/payment"
)

// Config contains configuration of the ledger gateway client.
type Config struct {
	GatewayURL     string `yaml:"gateway_url"`     // root URL of the ledger gateway API
	TimeoutSeconds int64  `yaml:"timeout_seconds"` // request timeout in seconds
}

// Client is a REST client of the ledger gateway.
// It submits signed payment intents and looks up transaction confirmation status.
type Client struct {
	apiRoot string
	timeout time.Duration
}

// NewClient creates a new ledger gateway rest client.
func NewClient(cfg Config) *Client {
	if cfg.TimeoutSeconds < 1 {
		cfg.TimeoutSeconds = 5
	}
	return &Client{apiRoot: cfg.GatewayURL, timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
}

// SubmitPayment sends the signed intent to the gateway and returns the ledger
// assigned transaction id.
func (c *Client) SubmitPayment(_ context.Context, intent *payment.Intent) (string, error) {
	req := emulator.SubmitRequest{Intent: *intent}
	var res emulator.SubmitResponse
	url := fmt.Sprintf("%s%s", c.apiRoot, emulator.SubmitURL)
	if err := httpclient.MakePost(c.timeout, url, req, &res); err != nil {
		return "", errors.Join(httpclient.ErrRejectedByServer, err)
	}
	if !res.Success {
		return "", errors.Join(httpclient.ErrRejectedByServer, errors.New(res.Err))
	}
	if res.TransactionID == "" {
		return "", errors.Join(httpclient.ErrServerReturnsInconsistentData, errors.New("empty transaction id"))
	}
	return res.TransactionID, nil
}

// TransactionStatus asks the gateway for confirmation status of the transaction.
// Transport failures are returned to the caller which treats them as transient.
func (c *Client) TransactionStatus(_ context.Context, transactionID string) (payment.TrxStatus, error) {
	req := emulator.StatusRequest{TransactionID: transactionID}
	var res emulator.StatusResponse
	url := fmt.Sprintf("%s%s", c.apiRoot, emulator.StatusURL)
	if err := httpclient.MakePost(c.timeout, url, req, &res); err != nil {
		return payment.TrxUnknown, err
	}
	if !res.Success {
		return payment.TrxUnknown, errors.Join(httpclient.ErrRejectedByServer, errors.New(res.Err))
	}
	return res.Status, nil
}
