// Package tip holds the tip wizard: a linear state machine that collects
// amount, asset and message for a recipient and produces a send request.
//
// The wizard does no I/O and owns no timers. Callers submit the Request it
// produces, then feed the outcome back through Resolve.
package tip

import (
	"time"

	"github.com/shopspring/decimal"
)

// Step identifies a wizard screen.
type Step int

const (
	StepAmount Step = iota
	StepAsset
	StepMessage
	StepConfirm
	StepProcessing
	StepSuccess
	StepFailed
)

func (s Step) String() string {
	switch s {
	case StepAmount:
		return "amount"
	case StepAsset:
		return "asset"
	case StepMessage:
		return "message"
	case StepConfirm:
		return "confirm"
	case StepProcessing:
		return "processing"
	case StepSuccess:
		return "success"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Asset is a wallet-held balance snapshot for one token.
type Asset struct {
	Symbol   string
	Name     string
	Decimals int32
	Balance  decimal.Decimal
	USDPrice decimal.Decimal
}

// USDValue is the balance valued at USDPrice.
func (a Asset) USDValue() decimal.Decimal {
	return a.Balance.Mul(a.USDPrice)
}

// FormatBalance renders the balance with at most four fractional digits.
func (a Asset) FormatBalance() string {
	places := a.Decimals
	if places > 4 {
		places = 4
	}
	return a.Balance.Truncate(places).StringFixed(places)
}

// Recipient is the creator receiving a tip. PostID is set when the tip was
// started from a feed post.
type Recipient struct {
	ID      string
	Name    string
	Handle  string
	Address string
	PostID  string
}

// Draft is the transient state collected by the wizard.
type Draft struct {
	Recipient Recipient
	Amount    string
	Asset     string
	Message   string
}

// Request is what gets handed to a wallet for submission.
type Request struct {
	To            string
	RecipientID   string
	RecipientName string
	PostID        string
	Asset         string
	Decimals      int32
	Amount        string
	RawAmount     string
	Message       string
}

// Receipt reports a submitted tip.
type Receipt struct {
	Status string
	TxHash string
}

const (
	StatusConfirmed = "confirmed"
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
)

// Config parameterizes the wizard. One state machine covers the full
// six-step flow and the compact flow that picks the asset on the amount step.
type Config struct {
	MessageLimit        int
	Presets             []string
	Emojis              []string
	Labels              map[Step]string
	CombinedAmountAsset bool
	AutoClose           time.Duration
}

// DefaultConfig is the full amount/asset/message/confirm flow.
func DefaultConfig() Config {
	return Config{
		MessageLimit: 280,
		Presets:      []string{"1", "5", "10", "25"},
		Emojis:       []string{"🙏", "🔥", "💚", "🎉"},
		Labels: map[Step]string{
			StepAmount:     "Amount",
			StepAsset:      "Asset",
			StepMessage:    "Message",
			StepConfirm:    "Review",
			StepProcessing: "Sending",
			StepSuccess:    "Sent",
			StepFailed:     "Failed",
		},
		AutoClose: 2 * time.Second,
	}
}

// CompactConfig selects the asset on the amount step and caps messages at 200.
func CompactConfig() Config {
	cfg := DefaultConfig()
	cfg.MessageLimit = 200
	cfg.CombinedAmountAsset = true
	cfg.Labels[StepAmount] = "Amount & asset"
	cfg.AutoClose = 2500 * time.Millisecond
	return cfg
}

// Label returns the display label for a step.
func (c Config) Label(s Step) string {
	if l, ok := c.Labels[s]; ok && l != "" {
		return l
	}
	return s.String()
}

// Steps lists the forward path for this config, excluding the failure step.
func (c Config) Steps() []Step {
	if c.CombinedAmountAsset {
		return []Step{StepAmount, StepMessage, StepConfirm, StepProcessing, StepSuccess}
	}
	return []Step{StepAmount, StepAsset, StepMessage, StepConfirm, StepProcessing, StepSuccess}
}

func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.MessageLimit <= 0 {
		c.MessageLimit = d.MessageLimit
	}
	if len(c.Presets) == 0 {
		c.Presets = d.Presets
	}
	if len(c.Emojis) == 0 {
		c.Emojis = d.Emojis
	}
	if c.Labels == nil {
		c.Labels = d.Labels
	}
	if c.AutoClose <= 0 {
		c.AutoClose = d.AutoClose
	}
	return c
}
