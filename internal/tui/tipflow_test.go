package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ekene/oryo/internal/database/repository"
	"github.com/ekene/oryo/internal/tip"
	"github.com/ekene/oryo/internal/wallet"
)

type flakyWallet struct {
	wallet.Wallet
	fails int
}

func (f *flakyWallet) SendTip(ctx context.Context, from string, req tip.Request) (tip.Receipt, error) {
	if f.fails > 0 {
		f.fails--
		return tip.Receipt{}, fmt.Errorf("rpc: %w", tip.ErrConnectivity)
	}
	return f.Wallet.SendTip(ctx, from, req)
}

// brokenWallet fails every send with an error that is not a network problem.
type brokenWallet struct{ wallet.Wallet }

func (brokenWallet) SendTip(context.Context, string, tip.Request) (tip.Receipt, error) {
	return tip.Receipt{}, errors.New("nonce too low")
}

// stuckWallet never confirms; sends return only once ctx is cancelled.
type stuckWallet struct{ wallet.Wallet }

func (stuckWallet) SendTip(ctx context.Context, _ string, _ tip.Request) (tip.Receipt, error) {
	<-ctx.Done()
	return tip.Receipt{}, ctx.Err()
}

func step(t *testing.T, a *App) tip.Step {
	t.Helper()
	if a.tip == nil {
		t.Fatal("tip wizard is not open")
	}
	return a.tip.wiz.Step()
}

// toConfirm opens a tip for the selected creator and walks it to review.
func (e *testEnv) toConfirm(t *testing.T, amount, message string) {
	t.Helper()
	e.press(t, "t")
	e.typeText(t, amount)
	e.press(t, "enter", "enter")
	e.typeText(t, message)
	e.press(t, "enter")
	if got := step(t, e.app); got != tip.StepConfirm {
		t.Fatalf("step = %s, want confirm", got)
	}
}

func TestTipHappyPath(t *testing.T) {
	env := newTestEnv(t, envOpts{connected: true})
	a := env.app
	env.press(t, "2")
	before := a.creators[0].TipsCount

	env.press(t, "t")
	if got := step(t, a); got != tip.StepAmount {
		t.Fatalf("step = %s, want amount", got)
	}
	env.typeText(t, "5")
	env.press(t, "enter")
	if got := step(t, a); got != tip.StepAsset {
		t.Fatalf("step = %s, want asset", got)
	}
	env.press(t, "enter")
	env.typeText(t, "gm")
	env.press(t, "enter")

	view := a.View()
	for _, want := range []string{"$32.00", "Remaining: 245 DOT", "Message:   gm"} {
		if !strings.Contains(view, want) {
			t.Fatalf("confirm view missing %q:\n%s", want, view)
		}
	}

	env.press(t, "enter")
	if got := step(t, a); got != tip.StepSuccess {
		t.Fatalf("step = %s, want success (err %v)", got, a.tip.wiz.Err())
	}
	if !strings.Contains(a.View(), "Sent 5 DOT to Adewale") {
		t.Fatalf("success view:\n%s", a.View())
	}

	env.press(t, "x")
	if a.tip != nil {
		t.Fatal("any key on success should close the wizard")
	}
	if a.status != "Tip sent to Adewale" {
		t.Fatalf("status = %q", a.status)
	}
	if len(a.history) != 1 || a.history[0].Status != tip.StatusConfirmed || a.history[0].Amount != "5" {
		t.Fatalf("history = %+v", a.history)
	}
	if a.history[0].Message != "gm" {
		t.Fatalf("history message = %q", a.history[0].Message)
	}
	if a.creators[0].TipsCount != before+1 {
		t.Fatalf("tips count = %d, want %d", a.creators[0].TipsCount, before+1)
	}
	if a.balances[0].Symbol != "DOT" || a.balances[0].Balance.String() != "245" {
		t.Fatalf("DOT balance = %s", a.balances[0].Balance)
	}
}

func TestTipAmountRequired(t *testing.T) {
	env := newTestEnv(t, envOpts{connected: true})
	a := env.app
	env.press(t, "2", "t")
	env.typeText(t, "abc")
	if a.tip.amount.Value() != "" {
		t.Fatalf("letters should be ignored, amount = %q", a.tip.amount.Value())
	}
	if !strings.Contains(a.View(), "Continue (disabled)") {
		t.Fatalf("continue should be disabled:\n%s", a.View())
	}
	env.press(t, "enter")
	if got := step(t, a); got != tip.StepAmount {
		t.Fatalf("step = %s, want amount", got)
	}

	env.press(t, "p")
	if a.tip.wiz.Draft().Amount != "1" {
		t.Fatalf("preset amount = %q, want 1", a.tip.wiz.Draft().Amount)
	}
	env.press(t, "enter")
	if got := step(t, a); got != tip.StepAsset {
		t.Fatalf("step = %s, want asset", got)
	}
}

func TestTipEscOnAmountCancels(t *testing.T) {
	env := newTestEnv(t, envOpts{connected: true})
	env.press(t, "2", "t")
	env.typeText(t, "3")
	env.press(t, "esc")
	if env.app.tip != nil || env.app.status != "Tip cancelled" {
		t.Fatalf("tip=%v status=%q", env.app.tip != nil, env.app.status)
	}
	env.press(t, "t")
	if env.app.tip.wiz.Draft().Amount != "" {
		t.Fatal("a new wizard must start with an empty draft")
	}
}

func TestTipMessageEmojiAndBack(t *testing.T) {
	env := newTestEnv(t, envOpts{connected: true})
	a := env.app
	env.press(t, "2", "t")
	env.typeText(t, "2")
	env.press(t, "enter", "enter")
	env.typeText(t, "gm")

	env.send(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2"), Alt: true})
	if got := a.tip.wiz.Draft().Message; got != "gm🔥" {
		t.Fatalf("message = %q, want gm🔥", got)
	}
	env.send(t, tea.KeyMsg{Type: tea.KeyCtrlF})
	if got := a.tip.wiz.Draft().Message; got != "🔥gm🔥" {
		t.Fatalf("message = %q, want 🔥gm🔥", got)
	}
	if a.tip.message.Value() != a.tip.wiz.Draft().Message {
		t.Fatal("input out of sync with draft")
	}
	if !strings.Contains(a.View(), "276 characters left") {
		t.Fatalf("remaining counter:\n%s", a.View())
	}

	env.press(t, "esc")
	if got := step(t, a); got != tip.StepAsset {
		t.Fatalf("esc from message = %s, want asset", got)
	}
	env.press(t, "esc")
	if got := step(t, a); got != tip.StepAmount {
		t.Fatalf("esc from asset = %s, want amount", got)
	}
	if a.tip.wiz.Draft().Amount != "2" {
		t.Fatal("back navigation must keep the draft")
	}
}

func TestTipFailureRetry(t *testing.T) {
	w := &flakyWallet{Wallet: wallet.NewDevWallet(wallet.DevOptions{}), fails: 1}
	env := newTestEnv(t, envOpts{connected: true, wallet: w})
	a := env.app
	env.press(t, "2")
	env.toConfirm(t, "5", "")

	env.press(t, "enter")
	if got := step(t, a); got != tip.StepFailed {
		t.Fatalf("step = %s, want failed", got)
	}
	if !strings.Contains(a.View(), "[r] Retry") || !strings.Contains(a.View(), "network problem") {
		t.Fatalf("failed view:\n%s", a.View())
	}
	if a.tip.wiz.Draft().Amount != "5" {
		t.Fatal("failure must keep the draft")
	}

	env.press(t, "r")
	if got := step(t, a); got != tip.StepSuccess {
		t.Fatalf("retry step = %s, want success", got)
	}
	env.press(t, "x")

	if len(a.history) != 2 {
		t.Fatalf("history = %+v, want failed and confirmed", a.history)
	}
	statuses := map[string]bool{}
	for _, rec := range a.history {
		statuses[rec.Status] = true
	}
	if !statuses[tip.StatusFailed] || !statuses[tip.StatusConfirmed] {
		t.Fatalf("statuses = %v", statuses)
	}
}

func TestTipFailureBackAndClose(t *testing.T) {
	w := &flakyWallet{Wallet: wallet.NewDevWallet(wallet.DevOptions{}), fails: 5}
	env := newTestEnv(t, envOpts{connected: true, wallet: w})
	a := env.app
	env.press(t, "2")
	env.toConfirm(t, "1", "")
	env.press(t, "enter")
	env.press(t, "b")
	if got := step(t, a); got != tip.StepConfirm {
		t.Fatalf("b from failed = %s, want confirm", got)
	}
	env.press(t, "enter", "esc")
	if a.tip != nil || a.status != "Tip cancelled, nothing was sent" {
		t.Fatalf("tip=%v status=%q", a.tip != nil, a.status)
	}
}

func TestTipUnexpectedFailureOffersNoRetry(t *testing.T) {
	w := brokenWallet{Wallet: wallet.NewDevWallet(wallet.DevOptions{})}
	env := newTestEnv(t, envOpts{connected: true, wallet: w})
	a := env.app
	env.press(t, "2")
	env.toConfirm(t, "1", "")
	env.press(t, "enter")
	if got := step(t, a); got != tip.StepFailed {
		t.Fatalf("step = %s, want failed", got)
	}
	if strings.Contains(a.View(), "[r] Retry") {
		t.Fatalf("retry offered for an unexpected error:\n%s", a.View())
	}
	env.press(t, "r")
	if got := step(t, a); got != tip.StepFailed {
		t.Fatalf("r moved to %s, want failed", got)
	}
	if len(a.history) > 1 {
		t.Fatalf("r resubmitted: history = %+v", a.history)
	}
	env.press(t, "b")
	if got := step(t, a); got != tip.StepConfirm {
		t.Fatalf("b from failed = %s, want confirm", got)
	}
	if a.tip.wiz.Draft().Amount != "1" {
		t.Fatal("draft lost")
	}
}

func TestTipCancelWhileProcessingDropsLateResult(t *testing.T) {
	env := newTestEnv(t, envOpts{connected: true, wallet: stuckWallet{wallet.NewDevWallet(wallet.DevOptions{})}})
	a := env.app
	env.press(t, "2")
	env.toConfirm(t, "5", "")

	_, pending := a.Update(key("enter"))
	if got := step(t, a); got != tip.StepProcessing {
		t.Fatalf("step = %s, want processing", got)
	}
	env.press(t, "esc")
	if a.tip != nil || a.status != "Tip cancelled" {
		t.Fatalf("tip=%v status=%q", a.tip != nil, a.status)
	}

	env.run(t, pending)
	if a.tip != nil {
		t.Fatal("late result reopened a closed wizard")
	}
	if a.status != "Tip cancelled" {
		t.Fatalf("status = %q", a.status)
	}

	recs, err := repository.NewTipRepo(env.db).Recent(context.Background(), a.account.Address, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 1 || recs[0].Status != tip.StatusFailed {
		t.Fatalf("records = %+v, want one failed", recs)
	}
}

func TestTipStaleAutoCloseIgnored(t *testing.T) {
	env := newTestEnv(t, envOpts{connected: true})
	a := env.app
	env.press(t, "2")
	env.toConfirm(t, "1", "")
	env.press(t, "enter")
	first := a.tip.id
	env.press(t, "x")

	env.toConfirm(t, "2", "")
	env.press(t, "enter")
	if got := step(t, a); got != tip.StepSuccess {
		t.Fatalf("step = %s, want success", got)
	}

	env.send(t, tipAutoCloseMsg{id: first})
	if a.tip == nil {
		t.Fatal("auto-close from an earlier wizard closed the current one")
	}
	env.send(t, tipAutoCloseMsg{id: a.tip.id})
	if a.tip != nil || a.status != "Tip sent to Adewale" {
		t.Fatalf("auto-close: tip=%v status=%q", a.tip != nil, a.status)
	}
}

func TestTipNeedsConnectedWallet(t *testing.T) {
	env := newTestEnv(t, envOpts{})
	env.press(t, "2", "t")
	if env.app.tip != nil {
		t.Fatal("wizard opened without a wallet")
	}
	if !strings.Contains(env.app.status, "Connect a wallet") {
		t.Fatalf("status = %q", env.app.status)
	}
}

func TestTipFromFeedCountsPost(t *testing.T) {
	env := newTestEnv(t, envOpts{connected: true})
	a := env.app
	post := a.posts[0]
	env.press(t, "1", "t")
	if a.tip.wiz.Recipient().PostID != post.ID {
		t.Fatalf("post id = %q, want %q", a.tip.wiz.Recipient().PostID, post.ID)
	}
	env.press(t, "p", "enter", "enter", "enter", "enter", "x")
	if a.status != "Tip sent to "+post.CreatorName {
		t.Fatalf("status = %q", a.status)
	}
	for _, p := range a.posts {
		if p.ID == post.ID && p.TipsCount != post.TipsCount+1 {
			t.Fatalf("post tips = %d, want %d", p.TipsCount, post.TipsCount+1)
		}
	}
}

func TestCompactTipPicksAssetOnAmountStep(t *testing.T) {
	env := newTestEnv(t, envOpts{connected: true, variant: "compact"})
	a := env.app
	env.press(t, "2", "t")
	if a.tip.message.CharLimit != 200 {
		t.Fatalf("message cap = %d, want 200", a.tip.message.CharLimit)
	}
	if !strings.Contains(a.View(), "KSM") {
		t.Fatalf("compact amount step should list assets:\n%s", a.View())
	}
	env.press(t, "right")
	if a.tip.wiz.Draft().Asset != "KSM" {
		t.Fatalf("asset = %q, want KSM", a.tip.wiz.Draft().Asset)
	}
	env.typeText(t, "1")
	env.press(t, "enter")
	if got := step(t, a); got != tip.StepMessage {
		t.Fatalf("step = %s, want message", got)
	}
	if pos, total := a.tip.wiz.Position(); pos != 2 || total != 5 {
		t.Fatalf("position = %d of %d", pos, total)
	}
}
