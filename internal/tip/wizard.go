package tip

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Wizard is the tip flow state machine. The zero value is not usable; build
// one with New for every recipient so no draft outlives its wizard.
type Wizard struct {
	cfg      Config
	step     Step
	draft    Draft
	assets   []Asset
	assetIdx int
	err      error
	receipt  Receipt
	closed   bool
}

// New starts a wizard at the amount step. Assets without a positive balance
// are dropped; the first held asset is preselected.
func New(cfg Config, to Recipient, assets []Asset) *Wizard {
	cfg = cfg.normalize()
	held := make([]Asset, 0, len(assets))
	for _, a := range assets {
		if a.Balance.IsPositive() {
			held = append(held, a)
		}
	}
	w := &Wizard{cfg: cfg, step: StepAmount, assets: held}
	w.draft.Recipient = to
	if len(held) > 0 {
		w.draft.Asset = held[0].Symbol
	}
	return w
}

func (w *Wizard) Config() Config { return w.cfg }
func (w *Wizard) Step() Step { return w.step }
func (w *Wizard) Draft() Draft { return w.draft }
func (w *Wizard) Assets() []Asset { return w.assets }
func (w *Wizard) Err() error { return w.err }
func (w *Wizard) Receipt() Receipt { return w.receipt }
func (w *Wizard) Closed() bool { return w.closed }
func (w *Wizard) MessageLimit() int { return w.cfg.MessageLimit }
func (w *Wizard) AssetIndex() int { return w.assetIdx }
func (w *Wizard) Recipient() Recipient { return w.draft.Recipient }

// Position returns the 1-based index of the current step on the forward path
// and the path length. The failure step reports the confirm position.
func (w *Wizard) Position() (int, int) {
	steps := w.cfg.Steps()
	cur := w.step
	if cur == StepFailed {
		cur = StepConfirm
	}
	for i, s := range steps {
		if s == cur {
			return i + 1, len(steps)
		}
	}
	return 0, len(steps)
}

// SelectedAsset returns the chosen asset, if any asset is held.
func (w *Wizard) SelectedAsset() (Asset, bool) {
	for _, a := range w.assets {
		if a.Symbol == w.draft.Asset {
			return a, true
		}
	}
	return Asset{}, false
}

// SetAmount replaces the amount input. Input is accepted as typed; validity
// is checked by CanContinue and Next.
func (w *Wizard) SetAmount(s string) error {
	if err := w.editable(StepAmount); err != nil {
		return err
	}
	w.draft.Amount = strings.TrimSpace(s)
	w.err = nil
	return nil
}

// ApplyPreset sets the amount to the i-th configured preset.
func (w *Wizard) ApplyPreset(i int) error {
	if i < 0 || i >= len(w.cfg.Presets) {
		return invalid("amount", "no such preset")
	}
	return w.SetAmount(w.cfg.Presets[i])
}

// SelectAsset chooses a held asset by symbol.
func (w *Wizard) SelectAsset(symbol string) error {
	if err := w.assetEditable(); err != nil {
		return err
	}
	for i, a := range w.assets {
		if strings.EqualFold(a.Symbol, symbol) {
			w.assetIdx = i
			w.draft.Asset = a.Symbol
			w.err = nil
			return nil
		}
	}
	return invalid("asset", "no "+strings.ToUpper(symbol)+" balance in this wallet")
}

// MoveAsset moves the asset cursor by delta, clamped to the list.
func (w *Wizard) MoveAsset(delta int) error {
	if err := w.assetEditable(); err != nil {
		return err
	}
	if len(w.assets) == 0 {
		return invalid("asset", "no assets with a balance")
	}
	i := w.assetIdx + delta
	if i < 0 {
		i = 0
	}
	if i >= len(w.assets) {
		i = len(w.assets) - 1
	}
	w.assetIdx = i
	w.draft.Asset = w.assets[i].Symbol
	return nil
}

// SetMessage replaces the message, truncated to the configured cap.
func (w *Wizard) SetMessage(s string) error {
	if err := w.editable(StepMessage); err != nil {
		return err
	}
	w.draft.Message = clampRunes(s, w.cfg.MessageLimit)
	return nil
}

// Paste appends text to the message, truncated to the cap.
func (w *Wizard) Paste(s string) error {
	return w.SetMessage(w.draft.Message + s)
}

// AppendEmoji adds an emoji after the message. If the cap is reached the
// message is left as is.
func (w *Wizard) AppendEmoji(e string) error {
	if err := w.editable(StepMessage); err != nil {
		return err
	}
	next := w.draft.Message + e
	if runeLen(next) > w.cfg.MessageLimit {
		return nil
	}
	w.draft.Message = next
	return nil
}

// PrependEmoji adds an emoji before the message, dropping trailing runes to
// stay within the cap.
func (w *Wizard) PrependEmoji(e string) error {
	if err := w.editable(StepMessage); err != nil {
		return err
	}
	if runeLen(e) > w.cfg.MessageLimit {
		return nil
	}
	w.draft.Message = clampRunes(e+w.draft.Message, w.cfg.MessageLimit)
	return nil
}

// MessageRemaining is the number of runes still available.
func (w *Wizard) MessageRemaining() int {
	return w.cfg.MessageLimit - runeLen(w.draft.Message)
}

// CanContinue reports whether Next would succeed from the current step.
func (w *Wizard) CanContinue() bool {
	if w.closed {
		return false
	}
	switch w.step {
	case StepAmount, StepAsset:
		return w.validateStep() == nil
	case StepMessage, StepConfirm:
		return true
	default:
		return false
	}
}

// Next advances one step. Validation failures leave the step unchanged.
// Leaving confirm requires Submit.
func (w *Wizard) Next() error {
	if w.closed {
		return ErrClosed
	}
	switch w.step {
	case StepAmount, StepAsset, StepMessage:
	default:
		return &StepError{Op: "next", Step: w.step}
	}
	if err := w.validateStep(); err != nil {
		w.err = err
		return err
	}
	w.err = nil
	w.step = w.following(w.step)
	return nil
}

// Back moves one step back. It is a no-op on the first step and while a
// submission is in flight or done. From failed it returns to confirm.
func (w *Wizard) Back() {
	if w.closed {
		return
	}
	switch w.step {
	case StepProcessing, StepSuccess, StepAmount:
		return
	case StepFailed:
		w.step = StepConfirm
		w.err = nil
		return
	}
	steps := w.cfg.Steps()
	for i, s := range steps {
		if s == w.step && i > 0 {
			w.step = steps[i-1]
			w.err = nil
			return
		}
	}
}

// Summary is the confirm screen's computed view of the draft.
type Summary struct {
	Recipient Recipient
	Amount    decimal.Decimal
	Asset     string
	USD       decimal.Decimal
	Remaining decimal.Decimal
	Message   string
	RawAmount string
}

// Review computes display totals for the draft.
func (w *Wizard) Review() (Summary, error) {
	if w.closed {
		return Summary{}, ErrClosed
	}
	amount, err := ParseAmount(w.draft.Amount)
	if err != nil {
		return Summary{}, err
	}
	asset, ok := w.SelectedAsset()
	if !ok {
		return Summary{}, invalid("asset", "choose an asset")
	}
	raw, err := RawAmount(w.draft.Amount, asset.Decimals)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Recipient: w.draft.Recipient,
		Amount:    amount,
		Asset:     asset.Symbol,
		USD:       amount.Mul(asset.USDPrice).Round(2),
		Remaining: asset.Balance.Sub(amount),
		Message:   w.draft.Message,
		RawAmount: raw,
	}, nil
}

// Submit moves confirm to processing and returns the request to send.
func (w *Wizard) Submit() (Request, error) {
	if w.closed {
		return Request{}, ErrClosed
	}
	if w.step != StepConfirm {
		return Request{}, &StepError{Op: "submit", Step: w.step}
	}
	sum, err := w.Review()
	if err != nil {
		w.err = err
		return Request{}, err
	}
	if strings.TrimSpace(w.draft.Recipient.Address) == "" {
		err := invalid("recipient", "recipient has no wallet address")
		w.err = err
		return Request{}, err
	}
	asset, _ := w.SelectedAsset()
	w.err = nil
	w.step = StepProcessing
	return Request{
		To:            w.draft.Recipient.Address,
		RecipientID:   w.draft.Recipient.ID,
		RecipientName: w.draft.Recipient.Name,
		PostID:        w.draft.Recipient.PostID,
		Asset:         asset.Symbol,
		Decimals:      asset.Decimals,
		Amount:        sum.Amount.String(),
		RawAmount:     sum.RawAmount,
		Message:       strings.TrimSpace(w.draft.Message),
	}, nil
}

// Resolve records the outcome of a submission. A nil error moves to
// success; anything else moves to failed and keeps the draft.
func (w *Wizard) Resolve(r Receipt, err error) error {
	if w.closed {
		return ErrClosed
	}
	if w.step != StepProcessing {
		return &StepError{Op: "resolve", Step: w.step}
	}
	if err != nil {
		w.err = err
		w.step = StepFailed
		return nil
	}
	w.receipt = r
	w.err = nil
	w.step = StepSuccess
	return nil
}

// Retry returns a failed wizard to confirm with the draft intact.
func (w *Wizard) Retry() error {
	if w.closed {
		return ErrClosed
	}
	if w.step != StepFailed {
		return &StepError{Op: "retry", Step: w.step}
	}
	w.err = nil
	w.step = StepConfirm
	return nil
}

// Close discards the draft. The wizard cannot be used afterwards.
func (w *Wizard) Close() {
	w.closed = true
	w.draft = Draft{}
	w.assets = nil
	w.assetIdx = 0
	w.err = nil
	w.receipt = Receipt{}
}

func (w *Wizard) following(s Step) Step {
	steps := w.cfg.Steps()
	for i, cur := range steps {
		if cur == s && i+1 < len(steps) {
			return steps[i+1]
		}
	}
	return s
}

func (w *Wizard) validateStep() error {
	switch w.step {
	case StepAmount:
		if _, err := ParseAmount(w.draft.Amount); err != nil {
			return err
		}
		if w.cfg.CombinedAmountAsset {
			return w.validateAsset()
		}
		return nil
	case StepAsset:
		return w.validateAsset()
	default:
		return nil
	}
}

func (w *Wizard) validateAsset() error {
	asset, ok := w.SelectedAsset()
	if !ok {
		return invalid("asset", "no assets with a balance")
	}
	amount, err := ParseAmount(w.draft.Amount)
	if err != nil {
		return err
	}
	if amount.GreaterThan(asset.Balance) {
		return invalid("asset", "insufficient "+asset.Symbol+" balance")
	}
	if _, err := RawAmount(w.draft.Amount, asset.Decimals); err != nil {
		return err
	}
	return nil
}

func (w *Wizard) editable(s Step) error {
	if w.closed {
		return ErrClosed
	}
	if w.step != s {
		return &StepError{Op: "edit " + s.String(), Step: w.step}
	}
	return nil
}

func (w *Wizard) assetEditable() error {
	if w.closed {
		return ErrClosed
	}
	if w.step == StepAsset || (w.cfg.CombinedAmountAsset && w.step == StepAmount) {
		return nil
	}
	return &StepError{Op: "select asset", Step: w.step}
}

func runeLen(s string) int { return len([]rune(s)) }

func clampRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
