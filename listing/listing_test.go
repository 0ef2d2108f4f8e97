package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validPayload() Payload {
	return Payload{
		Kind:          KindJob,
		Title:         "Rust Engineer",
		Company:       "Acme",
		Description:   "Build embedded tooling.",
		Category:      "engineering",
		WalletAddress: "addr1qxtest",
		DurationDays:  30,
	}
}

func TestPayloadValidateSuccess(t *testing.T) {
	p := validPayload()
	assert.Nil(t, p.Validate())
}

func TestPayloadValidateFailure(t *testing.T) {
	mutations := map[string]func(p *Payload){
		"kind":     func(p *Payload) { p.Kind = "banner" },
		"title":    func(p *Payload) { p.Title = "" },
		"company":  func(p *Payload) { p.Company = "" },
		"wallet":   func(p *Payload) { p.WalletAddress = "" },
		"duration": func(p *Payload) { p.DurationDays = 0 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			p := validPayload()
			mutate(&p)
			assert.NotNil(t, p.Validate())
		})
	}
}

func TestFromPayloadDerivesExpiry(t *testing.T) {
	p := validPayload()
	now := time.Now()
	l := FromPayload(&p, "trx-001", now)
	assert.Equal(t, StatusConfirmed, l.Status)
	assert.Equal(t, "trx-001", l.TransactionID)
	assert.Equal(t, now.Add(30*24*time.Hour), l.ExpiresAt)
}

func TestIsActive(t *testing.T) {
	p := validPayload()
	now := time.Now()
	l := FromPayload(&p, "trx-002", now)
	assert.True(t, l.IsActive(now.Add(time.Hour)))
	assert.False(t, l.IsActive(now.Add(31*24*time.Hour)))

	l.Status = StatusPaused
	assert.False(t, l.IsActive(now.Add(time.Hour)))
}
