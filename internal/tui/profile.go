package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ekene/oryo/internal/database/repository"
	"github.com/ekene/oryo/internal/identity"
	"github.com/ekene/oryo/internal/wallet"
)

const defaultLoginTimeout = 2 * time.Minute

type profileField struct {
	label string
	input textinput.Model
}

// profileForm edits the stored profile in place. Fields map one to one onto
// repository.Profile.
type profileForm struct {
	base   repository.Profile
	fields []profileField
	active int
}

func newProfileForm(p repository.Profile, newInput func() textinput.Model) *profileForm {
	mk := func(label, value string, limit int) profileField {
		in := newInput()
		in.Prompt = ""
		in.CharLimit = limit
		in.SetValue(value)
		return profileField{label: label, input: in}
	}
	return &profileForm{
		base: p,
		fields: []profileField{
			mk("Name", p.Name, 50),
			mk("Handle", p.Handle, 32),
			mk("Bio", p.Bio, 280),
			mk("Email", p.Email, 120),
			mk("Website", p.Website, 200),
			mk("Avatar", p.Avatar, 300),
		},
	}
}

func (f *profileForm) focus() tea.Cmd {
	for i := range f.fields {
		f.fields[i].input.Blur()
	}
	return f.fields[f.active].input.Focus()
}

func (f *profileForm) move(delta int) tea.Cmd {
	n := len(f.fields)
	f.active = (f.active + delta + n) % n
	return f.focus()
}

func (f *profileForm) value() repository.Profile {
	p := f.base
	p.Name = f.fields[0].input.Value()
	p.Handle = f.fields[1].input.Value()
	p.Bio = f.fields[2].input.Value()
	p.Email = f.fields[3].input.Value()
	p.Website = f.fields[4].input.Value()
	p.Avatar = f.fields[5].input.Value()
	return p
}

func (a *App) handleFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := a.form
	switch m.Type {
	case tea.KeyEsc:
		a.form = nil
		a.status = "Edit cancelled"
		return a, nil
	case tea.KeyTab, tea.KeyDown:
		return a, f.move(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return a, f.move(-1)
	case tea.KeyEnter:
		return a, a.saveProfile(f.value())
	}
	var cmd tea.Cmd
	f.fields[f.active].input, cmd = f.fields[f.active].input.Update(m)
	return a, cmd
}

func (a *App) saveProfile(p repository.Profile) tea.Cmd {
	if a.account == nil {
		a.status = wallet.ErrNotConnected.Error()
		return nil
	}
	svc, ctx := a.deps.Profiles, a.ctx
	p.Address = a.account.Address
	return func() tea.Msg {
		saved, err := svc.Save(ctx, p)
		if err != nil {
			return errMsg{op: "save profile", err: err}
		}
		return profileSavedMsg{profile: saved, note: "Profile saved"}
	}
}

// login runs the OAuth loopback flow and merges the result into the
// connected account's profile.
func (a *App) login() tea.Cmd {
	if a.deps.Identity == nil {
		a.status = identity.ErrNotConfigured.Error()
		return nil
	}
	if a.account == nil {
		a.status = "Connect a wallet before signing in"
		return nil
	}
	if a.loggingIn {
		return nil
	}
	timeout := a.cfg.OAuth.Timeout
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}
	ctx, cancel := context.WithTimeout(a.ctx, timeout)
	a.loginSeq++
	a.loginCancel = cancel
	a.loggingIn = true
	a.status = "Waiting for sign-in in your browser... [esc] Cancel"
	provider, profiles, open := a.deps.Identity, a.deps.Profiles, a.deps.OpenURL
	addr, seq := a.account.Address, a.loginSeq
	return func() tea.Msg {
		defer cancel()
		id, err := provider.Login(ctx, open)
		if err != nil {
			return loginMsg{id: seq, err: err}
		}
		p, err := profiles.ApplyIdentity(ctx, addr, id)
		return loginMsg{id: seq, profile: p, err: err}
	}
}

// cancelLogin abandons a pending sign-in. Its result, if any, is dropped.
func (a *App) cancelLogin() {
	if !a.loggingIn {
		return
	}
	a.endLogin()
	a.status = "Sign-in cancelled"
}

func (a *App) endLogin() {
	if a.loginCancel != nil {
		a.loginCancel()
		a.loginCancel = nil
	}
	a.loggingIn = false
}
