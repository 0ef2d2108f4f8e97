package listing

import (
	"errors"
	"fmt"
	"time"
)

// IndependentCompany is the sentinel company name that marks a job listing
// as not belonging to any funded project.
const IndependentCompany = "Independent"

const maxDurationDays = 365

var (
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrEmptyCompany       = errors.New("company cannot be empty")
	ErrEmptyWalletAddress = errors.New("wallet address cannot be empty")
	ErrUnknownKind        = errors.New("unknown listing kind")
	ErrWrongDuration      = fmt.Errorf("duration must be between 1 and %v days", maxDurationDays)
)

// Kind describes what kind of billable listing the payload materializes in to.
type Kind string

const (
	KindJob     Kind = "job"
	KindProject Kind = "project"
)

// Status describes the lifecycle stage of a published listing.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPaused    Status = "paused"
	StatusExpired   Status = "expired"
)

// Payload holds the validated listing fields collected before the payment
// is submitted. It travels inside the pending transaction record and is
// materialized in to a Listing only after the payment confirms.
type Payload struct {
	Kind          Kind   `json:"kind"           yaml:"kind"`
	Title         string `json:"title"          yaml:"title"`
	Company       string `json:"company"        yaml:"company"`
	Description   string `json:"description"    yaml:"description"`
	Category      string `json:"category"       yaml:"category"`
	ContactEmail  string `json:"contact_email"  yaml:"contact_email"`
	WebsiteURL    string `json:"website_url"    yaml:"website_url"`
	WalletAddress string `json:"wallet_address" yaml:"wallet_address"`
	DurationDays  int    `json:"duration_days"  yaml:"duration_days"`
}

// Validate checks the payload holds all fields required to materialize a listing.
func (p *Payload) Validate() error {
	switch p.Kind {
	case KindJob, KindProject:
	default:
		return errors.Join(ErrUnknownKind, fmt.Errorf("got [ %s ]", p.Kind))
	}
	if p.Title == "" {
		return ErrEmptyTitle
	}
	if p.Company == "" {
		return ErrEmptyCompany
	}
	if p.WalletAddress == "" {
		return ErrEmptyWalletAddress
	}
	if p.DurationDays < 1 || p.DurationDays > maxDurationDays {
		return errors.Join(ErrWrongDuration, fmt.Errorf("got [ %v ]", p.DurationDays))
	}
	return nil
}

// Listing is the durable billable artifact created exactly once per confirmed payment.
type Listing struct {
	ID            int64     `json:"id"             db:"id"`
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	Kind          Kind      `json:"kind"           db:"kind"`
	Title         string    `json:"title"          db:"title"`
	Company       string    `json:"company"        db:"company"`
	Description   string    `json:"description"    db:"description"`
	Category      string    `json:"category"       db:"category"`
	ContactEmail  string    `json:"contact_email"  db:"contact_email"`
	WebsiteURL    string    `json:"website_url"    db:"website_url"`
	WalletAddress string    `json:"wallet_address" db:"wallet_address"`
	Status        Status    `json:"status"         db:"status"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"     db:"expires_at"`
}

// FromPayload builds a confirmed Listing from the payload.
// Expiry is derived from the purchased duration.
func FromPayload(p *Payload, transactionID string, now time.Time) Listing {
	return Listing{
		TransactionID: transactionID,
		Kind:          p.Kind,
		Title:         p.Title,
		Company:       p.Company,
		Description:   p.Description,
		Category:      p.Category,
		ContactEmail:  p.ContactEmail,
		WebsiteURL:    p.WebsiteURL,
		WalletAddress: p.WalletAddress,
		Status:        StatusConfirmed,
		CreatedAt:     now,
		ExpiresAt:     now.Add(time.Duration(p.DurationDays) * 24 * time.Hour),
	}
}

// IsActive tells if the listing is confirmed and not past its expiry at given time.
func (l *Listing) IsActive(now time.Time) bool {
	return l.Status == StatusConfirmed && now.Before(l.ExpiresAt)
}
