package apiclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/bartossh/Mercantis/httpclient"
	"github.com/bartossh/Mercantis/listing"
	"github.com/bartossh/Mercantis/payment"
	"github.com/bartossh/Mercantis/server"
	"github.com/bartossh/Mercantis/wallet"
	"github.com/bartossh/Mercantis/webhooks"
)

// WalletReadSaver allows to read and save the wallet.
type WalletReadSaver interface {
	ReadWallet() (wallet.Wallet, error)
	SaveWallet(w wallet.Wallet) error
}

// WalletCreator is a function that creates a new wallet.
type WalletCreator func() (wallet.Wallet, error)

// Client is a rest client for the node API.
// It holds the wallet that signs the payment intents and is designed to serve
// as an easy way of building client applications that pay for listings.
type Client struct {
	apiRoot       string
	timeout       time.Duration
	wrs           WalletReadSaver
	w             wallet.Wallet
	walletCreator WalletCreator
	ready         bool
}

// NewClient creates a new rest client.
func NewClient(apiRoot string, timeout time.Duration, wrs WalletReadSaver, walletCreator WalletCreator) *Client {
	return &Client{apiRoot: apiRoot, timeout: timeout, wrs: wrs, walletCreator: walletCreator}
}

// ValidateApiVersion makes a call to the API server and validates client and server API versions and header correctness.
// If API version not much it is returning an error as accessing the API server with different API version
// may lead to unexpected results.
func (c *Client) ValidateApiVersion() error {
	var alive server.AliveResponse
	url := fmt.Sprintf("%s%s", c.apiRoot, server.AliveURL)
	if err := httpclient.MakeGet(c.timeout, url, &alive); err != nil {
		return err
	}

	if alive.APIVersion != server.ApiVersion {
		return errors.Join(httpclient.ErrApiVersionMismatch, fmt.Errorf("expected %s but got %s", server.ApiVersion, alive.APIVersion))
	}

	if alive.APIHeader != server.Header {
		return errors.Join(httpclient.ErrApiHeaderMismatch, fmt.Errorf("expected %s but got %s", server.Header, alive.APIHeader))
	}

	return nil
}

// NewWallet creates a new wallet held by the client.
func (c *Client) NewWallet() error {
	w, err := c.walletCreator()
	if err != nil {
		return err
	}
	c.w = w
	c.ready = true
	return nil
}

// Address reads the wallet address.
// Address is a string representation of wallet public key.
func (c *Client) Address() (string, error) {
	if !c.ready {
		return "", httpclient.ErrWalletNotReady
	}

	return c.w.Address(), nil
}

// CreateListing signs a payment intent for the payload and submits it to the
// node. The returned transaction id tracks the payment until the listing is
// materialized.
func (c *Client) CreateListing(p listing.Payload, amount int64) (string, error) {
	if !c.ready {
		return "", httpclient.ErrWalletNotReady
	}

	p.WalletAddress = c.w.Address()
	intent, err := payment.NewIntent(&p, amount, &c.w)
	if err != nil {
		return "", errors.Join(httpclient.ErrSigningFailed, err)
	}

	req := server.CreatePaymentRequest{
		Payload: p,
		Intent:  intent,
	}
	var res server.CreatePaymentResponse
	url := fmt.Sprintf("%s%s", c.apiRoot, server.CreatePaymentURL)
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

// PendingStatus reads the pending transaction of the client wallet.
func (c *Client) PendingStatus() (payment.PendingTransaction, bool, error) {
	addr, err := c.Address()
	if err != nil {
		return payment.PendingTransaction{}, false, err
	}

	req := server.PaymentStatusRequest{WalletAddress: addr}
	var res server.PaymentStatusResponse
	url := fmt.Sprintf("%s%s", c.apiRoot, server.PaymentStatusURL)
	if err := httpclient.MakePost(c.timeout, url, req, &res); err != nil {
		return payment.PendingTransaction{}, false, errors.Join(httpclient.ErrRejectedByServer, err)
	}
	if !res.Success {
		return payment.PendingTransaction{}, false, httpclient.ErrRejectedByServer
	}

	return res.Pending, res.Exists, nil
}

// Abandon gives up on the unconfirmed payment of the client wallet.
func (c *Client) Abandon() (bool, error) {
	addr, err := c.Address()
	if err != nil {
		return false, err
	}

	req := server.PaymentAbandonRequest{WalletAddress: addr}
	var res server.PaymentAbandonResponse
	url := fmt.Sprintf("%s%s", c.apiRoot, server.PaymentAbandonURL)
	if err := httpclient.MakePost(c.timeout, url, req, &res); err != nil {
		return false, errors.Join(httpclient.ErrRejectedByServer, err)
	}
	if !res.Success {
		return false, errors.Join(httpclient.ErrRejectedByServer, errors.New(res.Err))
	}

	return res.Abandoned, nil
}

// Listings searches listings matching the filters.
func (c *Client) Listings(f listing.Filters) ([]listing.Listing, error) {
	req := server.SearchListingsRequest{Filters: f}
	var res server.SearchListingsResponse
	url := fmt.Sprintf("%s%s", c.apiRoot, server.SearchListingsURL)
	if err := httpclient.MakePost(c.timeout, url, req, &res); err != nil {
		return nil, errors.Join(httpclient.ErrRejectedByServer, err)
	}
	if !res.Success {
		return nil, httpclient.ErrRejectedByServer
	}

	return res.Listings, nil
}

// Deduplicate runs the deduplication sweep on the node.
func (c *Client) Deduplicate() (server.DeduplicateResponse, error) {
	var res server.DeduplicateResponse
	url := fmt.Sprintf("%s%s", c.apiRoot, server.DeduplicateURL)
	if err := httpclient.MakePost(c.timeout, url, struct{}{}, &res); err != nil {
		return server.DeduplicateResponse{}, errors.Join(httpclient.ErrRejectedByServer, err)
	}
	if !res.Success {
		return server.DeduplicateResponse{}, httpclient.ErrRejectedByServer
	}

	return res, nil
}

// CreateWebhook registers a hook fired for the client wallet on the trigger.
func (c *Client) CreateWebhook(trigger byte, hook webhooks.Hook) error {
	addr, err := c.Address()
	if err != nil {
		return err
	}

	req := server.CreateWebhookRequest{
		Trigger:       trigger,
		WalletAddress: addr,
		Hook:          hook,
	}
	var res server.WebhookResponse
	url := fmt.Sprintf("%s%s", c.apiRoot, server.CreateWebhookURL)
	if err := httpclient.MakePost(c.timeout, url, req, &res); err != nil {
		return errors.Join(httpclient.ErrRejectedByServer, err)
	}
	if !res.Success {
		return errors.Join(httpclient.ErrRejectedByServer, errors.New(res.Err))
	}

	return nil
}

// RemoveWebhook removes the hook of the client wallet for the trigger.
func (c *Client) RemoveWebhook(trigger byte) error {
	addr, err := c.Address()
	if err != nil {
		return err
	}

	req := server.RemoveWebhookRequest{
		Trigger:       trigger,
		WalletAddress: addr,
	}
	var res server.WebhookResponse
	url := fmt.Sprintf("%s%s", c.apiRoot, server.RemoveWebhookURL)
	if err := httpclient.MakePost(c.timeout, url, req, &res); err != nil {
		return errors.Join(httpclient.ErrRejectedByServer, err)
	}
	if !res.Success {
		return errors.Join(httpclient.ErrRejectedByServer, errors.New(res.Err))
	}

	return nil
}

// SaveWalletToFile saves the wallet to the file in the path.
func (c *Client) SaveWalletToFile() error {
	if !c.ready {
		return httpclient.ErrWalletNotReady
	}

	return c.wrs.SaveWallet(c.w)
}

// ReadWalletFromFile reads the wallet from the file in the path.
func (c *Client) ReadWalletFromFile() error {
	w, err := c.wrs.ReadWallet()
	if err != nil {
		return err
	}
	c.w = w
	c.ready = true
	return nil
}

// FlushWalletFromMemory flushes the wallet from the memory.
// Do it after you have saved the wallet to the file.
func (c *Client) FlushWalletFromMemory() {
	c.w = wallet.Wallet{}
	c.ready = false
}
