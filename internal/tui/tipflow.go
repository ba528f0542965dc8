package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ekene/oryo/internal/tip"
	"github.com/ekene/oryo/internal/wallet"
)

// tipFlow is one open tip wizard. id tags every async message the flow
// starts, so results and timers for a closed flow are dropped.
type tipFlow struct {
	id      int
	sender  string
	wiz     *tip.Wizard
	amount  textinput.Model
	message textinput.Model
	spin    spinner.Model
	cancel  context.CancelFunc
	preset  int
	emoji   string
}

type tipReadyMsg struct {
	recipient tip.Recipient
	assets    []tip.Asset
	err       error
}

type tipResultMsg struct {
	id      int
	receipt tip.Receipt
	err     error
}

type tipAutoCloseMsg struct{ id int }

func (a *App) openTip(r tip.Recipient, assets []tip.Asset) tea.Cmd {
	if a.account == nil {
		a.status = wallet.ErrNotConnected.Error()
		return nil
	}
	a.closeTip()
	a.tipSeq++
	wiz := tip.New(a.wizard, r, assets)

	amount := a.newInput()
	amount.Prompt = "amount> "
	amount.Placeholder = "0.00"
	amount.CharLimit = 32

	message := a.newInput()
	message.Prompt = "message> "
	message.Placeholder = "optional"
	message.CharLimit = wiz.MessageLimit()

	f := &tipFlow{
		id:      a.tipSeq,
		sender:  a.account.Address,
		wiz:     wiz,
		amount:  amount,
		message: message,
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		preset:  -1,
	}
	if emojis := wiz.Config().Emojis; len(emojis) > 0 {
		f.emoji = emojis[0]
	}
	a.tip = f
	a.status = ""
	a.log.Debug("tip wizard opened", "id", f.id, "to", r.Name)
	return f.amount.Focus()
}

// closeTip cancels any in-flight submission and discards the draft.
func (a *App) closeTip() {
	f := a.tip
	if f == nil {
		return
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.wiz.Close()
	a.tip = nil
}

func (a *App) handleTipKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := a.tip
	w := f.wiz
	key := m.String()

	switch w.Step() {
	case tip.StepAmount:
		switch key {
		case "esc":
			a.closeTip()
			a.status = "Tip cancelled"
			return a, nil
		case "enter":
			return a, a.tipNext()
		case "p":
			presets := w.Config().Presets
			if len(presets) == 0 {
				return a, nil
			}
			f.preset = (f.preset + 1) % len(presets)
			_ = w.ApplyPreset(f.preset)
			f.amount.SetValue(w.Draft().Amount)
			f.amount.CursorEnd()
			return a, nil
		case "left", "right":
			if w.Config().CombinedAmountAsset {
				delta := 1
				if key == "left" {
					delta = -1
				}
				_ = w.MoveAsset(delta)
				return a, nil
			}
		}
		if m.Type == tea.KeyRunes && !numeric(m.Runes) {
			return a, nil
		}
		var cmd tea.Cmd
		f.amount, cmd = f.amount.Update(m)
		_ = w.SetAmount(f.amount.Value())
		return a, cmd

	case tip.StepAsset:
		switch key {
		case "up", "k", "left":
			_ = w.MoveAsset(-1)
		case "down", "j", "right":
			_ = w.MoveAsset(1)
		case "enter":
			return a, a.tipNext()
		case "esc":
			w.Back()
			return a, f.amount.Focus()
		}
		return a, nil

	case tip.StepMessage:
		switch key {
		case "enter":
			return a, a.tipNext()
		case "esc":
			w.Back()
			f.message.Blur()
			if w.Step() == tip.StepAmount {
				return a, f.amount.Focus()
			}
			return a, nil
		case "ctrl+f":
			_ = w.PrependEmoji(f.emoji)
			f.syncMessage()
			return a, nil
		}
		if i, ok := emojiKey(key); ok {
			if emojis := w.Config().Emojis; i < len(emojis) {
				f.emoji = emojis[i]
				_ = w.AppendEmoji(f.emoji)
				f.syncMessage()
			}
			return a, nil
		}
		if m.Paste {
			_ = w.Paste(string(m.Runes))
			f.syncMessage()
			return a, nil
		}
		var cmd tea.Cmd
		f.message, cmd = f.message.Update(m)
		_ = w.SetMessage(f.message.Value())
		f.syncMessage()
		return a, cmd

	case tip.StepConfirm:
		switch key {
		case "enter":
			return a, a.submitTip()
		case "esc":
			w.Back()
			return a, f.message.Focus()
		}
		return a, nil

	case tip.StepProcessing:
		if key == "esc" {
			a.closeTip()
			a.status = "Tip cancelled"
		}
		return a, nil

	case tip.StepSuccess:
		return a, a.finishTip()

	case tip.StepFailed:
		switch key {
		case "r":
			if !tip.Retryable(w.Err()) {
				return a, nil
			}
			if err := w.Retry(); err != nil {
				return a, nil
			}
			return a, a.submitTip()
		case "b":
			w.Back()
		case "esc", "q":
			a.closeTip()
			a.status = "Tip cancelled, nothing was sent"
		}
		return a, nil
	}
	return a, nil
}

// tipNext advances the wizard and moves focus to the input the new step uses.
func (a *App) tipNext() tea.Cmd {
	f := a.tip
	if err := f.wiz.Next(); err != nil {
		return nil
	}
	switch f.wiz.Step() {
	case tip.StepMessage:
		f.amount.Blur()
		f.message.SetValue(f.wiz.Draft().Message)
		f.message.CursorEnd()
		return f.message.Focus()
	case tip.StepAsset, tip.StepConfirm:
		f.amount.Blur()
		f.message.Blur()
	}
	return nil
}

func (a *App) submitTip() tea.Cmd {
	f := a.tip
	req, err := f.wiz.Submit()
	if err != nil {
		return nil
	}
	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(a.ctx)
	f.cancel = cancel
	svc, id, sender := a.deps.Tips, f.id, f.sender
	a.log.Info("submitting tip", "id", id, "to", req.RecipientName, "asset", req.Asset, "amount", req.Amount)
	return tea.Batch(f.spin.Tick, func() tea.Msg {
		if svc == nil {
			return tipResultMsg{id: id, err: wallet.ErrNoWallet}
		}
		rec, err := svc.Send(ctx, sender, req)
		return tipResultMsg{id: id, receipt: rec, err: err}
	})
}

func (a *App) resolveTip(m tipResultMsg) tea.Cmd {
	f := a.tip
	if f == nil || f.id != m.id {
		a.log.Debug("dropping stale tip result", "id", m.id)
		return nil
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	if err := f.wiz.Resolve(m.receipt, m.err); err != nil {
		return nil
	}
	if m.err != nil {
		return nil
	}
	id := f.id
	return tea.Tick(f.wiz.Config().AutoClose, func(time.Time) tea.Msg {
		return tipAutoCloseMsg{id: id}
	})
}

// finishTip closes a successful wizard and runs the completion hook:
// status line plus a refresh of everything a tip changes.
func (a *App) finishTip() tea.Cmd {
	f := a.tip
	if f == nil {
		return nil
	}
	name := f.wiz.Recipient().Name
	a.closeTip()
	a.status = "Tip sent to " + name
	return tea.Batch(a.loadWallet(), a.loadCatalogue())
}

func (f *tipFlow) syncMessage() {
	if msg := f.wiz.Draft().Message; f.message.Value() != msg {
		f.message.SetValue(msg)
		f.message.CursorEnd()
	}
}

func (a *App) renderTip() string {
	f := a.tip
	w := f.wiz
	cfg := w.Config()
	r := w.Recipient()
	pos, total := w.Position()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render("Tip "+r.Name))
	fmt.Fprintf(&b, "%s\n\n", mutedStyle.Render(fmt.Sprintf("%s  step %d of %d  %s", r.Handle, pos, total, cfg.Label(w.Step()))))

	switch w.Step() {
	case tip.StepAmount:
		b.WriteString(f.amount.View() + "\n")
		b.WriteString(mutedStyle.Render("presets: "+strings.Join(cfg.Presets, " / ")) + "\n")
		if cfg.CombinedAmountAsset {
			b.WriteString("\n" + a.renderAssets(w, true))
		} else if asset, ok := w.SelectedAsset(); ok {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("paying in %s, balance %s", asset.Symbol, asset.FormatBalance())) + "\n")
		}
	case tip.StepAsset:
		b.WriteString(a.renderAssets(w, false))
	case tip.StepMessage:
		b.WriteString(f.message.View() + "\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d characters left  emoji: %s", w.MessageRemaining(), emojiHelp(cfg.Emojis))) + "\n")
	case tip.StepConfirm:
		b.WriteString(a.renderSummary(w))
	case tip.StepProcessing:
		fmt.Fprintf(&b, "%s Sending %s %s to %s...\n", f.spin.View(), w.Draft().Amount, w.Draft().Asset, r.Name)
	case tip.StepSuccess:
		rec := w.Receipt()
		b.WriteString(okStyle.Render(fmt.Sprintf("✓ Sent %s %s to %s", w.Draft().Amount, w.Draft().Asset, r.Name)) + "\n")
		if rec.TxHash != "" {
			fmt.Fprintf(&b, "tx %s (%s)\n", wallet.ShortAddress(rec.TxHash), rec.Status)
		}
	case tip.StepFailed:
		b.WriteString(errorStyle.Render("✗ "+tip.Describe(w.Err())) + "\n")
	}

	if err := w.Err(); err != nil && w.Step() != tip.StepFailed {
		b.WriteString("\n" + errorStyle.Render(tip.Describe(err)) + "\n")
	}
	b.WriteString("\n" + a.tipHelp(w))
	return b.String()
}

func (a *App) renderAssets(w *tip.Wizard, inline bool) string {
	assets := w.Assets()
	if len(assets) == 0 {
		return errorStyle.Render("No assets with a balance in this wallet") + "\n"
	}
	var b strings.Builder
	for i, as := range assets {
		line := fmt.Sprintf("%s %-5s %14s  %s%s", marker(i == w.AssetIndex()), as.Symbol, as.FormatBalance(), a.cfg.UI.CurrencySymbol, as.USDValue().StringFixed(2))
		if inline && i != w.AssetIndex() {
			line = mutedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (a *App) renderSummary(w *tip.Wizard) string {
	sum, err := w.Review()
	if err != nil {
		return errorStyle.Render(tip.Describe(err)) + "\n"
	}
	cur := a.cfg.UI.CurrencySymbol
	var b strings.Builder
	fmt.Fprintf(&b, "To:        %s %s\n", sum.Recipient.Name, mutedStyle.Render(wallet.ShortAddress(sum.Recipient.Address)))
	fmt.Fprintf(&b, "Amount:    %s %s (%s%s)\n", sum.Amount.String(), sum.Asset, cur, sum.USD.StringFixed(2))
	fmt.Fprintf(&b, "Remaining: %s %s\n", sum.Remaining.String(), sum.Asset)
	if sum.Message != "" {
		fmt.Fprintf(&b, "Message:   %s\n", sum.Message)
	}
	return b.String()
}

func (a *App) tipHelp(w *tip.Wizard) string {
	cont := "[enter] Continue"
	if !w.CanContinue() {
		cont = mutedStyle.Render("[enter] Continue (disabled)")
	}
	switch w.Step() {
	case tip.StepAmount:
		help := cont + "  [p] Preset  [esc] Cancel"
		if w.Config().CombinedAmountAsset {
			help += "  [←/→] Asset"
		}
		return help
	case tip.StepAsset:
		return cont + "  [↑/↓] Choose  [esc] Back"
	case tip.StepMessage:
		return cont + "  [alt+1..] Add emoji  [ctrl+f] Emoji first  [esc] Back"
	case tip.StepConfirm:
		return "[enter] Send tip  [esc] Back"
	case tip.StepProcessing:
		return "[esc] Cancel"
	case tip.StepSuccess:
		return mutedStyle.Render(fmt.Sprintf("closing in %s, any key to close now", w.Config().AutoClose))
	case tip.StepFailed:
		if tip.Retryable(w.Err()) {
			return "[r] Retry  [b] Back to review  [esc] Close"
		}
		return "[b] Back to review  [esc] Close"
	}
	return ""
}

func numeric(rs []rune) bool {
	for _, r := range rs {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// emojiKey maps alt+1..alt+9 to an emoji index.
func emojiKey(key string) (int, bool) {
	n, ok := strings.CutPrefix(key, "alt+")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(n)
	if err != nil || i < 1 || i > 9 {
		return 0, false
	}
	return i - 1, true
}

func emojiHelp(emojis []string) string {
	parts := make([]string, 0, len(emojis))
	for i, e := range emojis {
		parts = append(parts, fmt.Sprintf("%d:%s", i+1, e))
	}
	return strings.Join(parts, " ")
}
