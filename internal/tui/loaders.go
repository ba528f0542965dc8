package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/ekene/oryo/internal/database/repository"
	"github.com/ekene/oryo/internal/tip"
	"github.com/ekene/oryo/internal/wallet"
)

const historyLimit = 50

// loadCatalogue reads the display records concurrently.
func (a *App) loadCatalogue() tea.Cmd {
	d := a.deps
	ctx := a.ctx
	return func() tea.Msg {
		var msg catalogueMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			msg.creators, err = d.Creators.List(gctx)
			return err
		})
		g.Go(func() (err error) {
			msg.posts, err = d.Posts.Feed(gctx, 0)
			return err
		})
		g.Go(func() (err error) {
			msg.communities, err = d.Communities.List(gctx)
			return err
		})
		g.Go(func() (err error) {
			msg.events, err = d.Events.Upcoming(gctx, time.Now().UTC().Add(-24*time.Hour))
			return err
		})
		if err := g.Wait(); err != nil {
			return errMsg{op: "load", err: err}
		}
		return msg
	}
}

// loadWallet refreshes balances and tip history for the connected account.
func (a *App) loadWallet() tea.Cmd {
	s := a.deps.Session
	tips := a.deps.Tips
	ctx := a.ctx
	return func() tea.Msg {
		if s == nil {
			return walletMsg{}
		}
		acct, ok := s.Account()
		if !ok || s.Wallet() == nil {
			return walletMsg{}
		}
		msg := walletMsg{account: &acct}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			msg.balances, err = s.Wallet().Balances(gctx, acct.Address)
			return err
		})
		if tips != nil {
			g.Go(func() (err error) {
				msg.history, err = tips.History(gctx, acct.Address, historyLimit)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return errMsg{op: "wallet", err: err}
		}
		return msg
	}
}

func (a *App) loadHistory() tea.Cmd {
	if a.account == nil || a.deps.Tips == nil {
		return nil
	}
	tips, addr, ctx := a.deps.Tips, a.account.Address, a.ctx
	return func() tea.Msg {
		h, err := tips.History(ctx, addr, historyLimit)
		if err != nil {
			return errMsg{op: "history", err: err}
		}
		return historyMsg(h)
	}
}

func (a *App) loadCreatorDetail(id string) tea.Cmd {
	d, ctx := a.deps, a.ctx
	return func() tea.Msg {
		var msg creatorDetailMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			c, err := d.Creators.Get(gctx, id)
			if err != nil {
				return err
			}
			if c == nil {
				return errors.New("creator not found")
			}
			msg.creator = *c
			return nil
		})
		g.Go(func() (err error) {
			msg.badges, err = d.Badges.ByCreator(gctx, id)
			return err
		})
		g.Go(func() (err error) {
			msg.posts, err = d.Posts.ByCreator(gctx, id)
			return err
		})
		if err := g.Wait(); err != nil {
			return errMsg{op: "creator", err: err}
		}
		return msg
	}
}

func (a *App) loadProfile() tea.Cmd {
	if a.account == nil || a.deps.Profiles == nil {
		a.profile = repository.Profile{}
		return nil
	}
	svc, addr, ctx := a.deps.Profiles, a.account.Address, a.ctx
	return func() tea.Msg {
		p, err := svc.Load(ctx, addr)
		if err != nil {
			return errMsg{op: "profile", err: err}
		}
		return profileMsg(p)
	}
}

func (a *App) runSearch(q string) tea.Cmd {
	svc, ctx := a.deps.Search, a.ctx
	return func() tea.Msg {
		res, err := svc.Search(ctx, q)
		if err != nil {
			return errMsg{op: "search", err: err}
		}
		return searchMsg(res)
	}
}

func (a *App) toggleFollow(c repository.Creator) tea.Cmd {
	repo, ctx := a.deps.Creators, a.ctx
	following := !c.Following
	return a.thenReload(func() tea.Msg {
		if err := repo.SetFollowing(ctx, c.ID, following); err != nil {
			return errMsg{op: "follow", err: err}
		}
		if following {
			return statusMsg("Following " + c.Name)
		}
		return statusMsg("Unfollowed " + c.Name)
	})
}

func (a *App) toggleJoin(c repository.Community) tea.Cmd {
	repo, ctx := a.deps.Communities, a.ctx
	joined := !c.Joined
	return a.thenReload(func() tea.Msg {
		if err := repo.SetJoined(ctx, c.ID, joined); err != nil {
			return errMsg{op: "join", err: err}
		}
		if joined {
			return statusMsg("Joined " + c.Name)
		}
		return statusMsg("Left " + c.Name)
	})
}

// thenReload runs write and, once it has landed, reloads the catalogue.
func (a *App) thenReload(write tea.Cmd) tea.Cmd {
	reload := a.loadCatalogue()
	return func() tea.Msg {
		msg := write()
		if _, failed := msg.(errMsg); failed {
			return msg
		}
		return tea.BatchMsg{func() tea.Msg { return msg }, reload}
	}
}

func (a *App) connectWallet() tea.Cmd {
	s, ctx := a.deps.Session, a.ctx
	return a.afterWalletChange(func() tea.Msg {
		if s == nil {
			return errMsg{op: "connect", err: wallet.ErrNoWallet}
		}
		acct, err := s.Connect(ctx)
		if err != nil {
			return errMsg{op: "connect", err: err}
		}
		return statusMsg("Connected " + acct.Name + " " + wallet.ShortAddress(acct.Address))
	})
}

// afterWalletChange reloads the account-scoped views once the session moved.
func (a *App) afterWalletChange(change tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		msg := change()
		if _, failed := msg.(errMsg); failed {
			return msg
		}
		return tea.BatchMsg{
			func() tea.Msg { return msg },
			a.loadWallet(),
		}
	}
}

func (a *App) disconnectWallet() tea.Cmd {
	s, ctx := a.deps.Session, a.ctx
	if s == nil {
		return nil
	}
	a.profile = repository.Profile{}
	return a.afterWalletChange(func() tea.Msg {
		if err := s.Disconnect(ctx); err != nil {
			return errMsg{op: "disconnect", err: err}
		}
		return statusMsg("Wallet disconnected")
	})
}

func (a *App) switchAccount() tea.Cmd {
	s, ctx := a.deps.Session, a.ctx
	if s == nil || s.Wallet() == nil || a.account == nil {
		a.status = wallet.ErrNotConnected.Error()
		return nil
	}
	current := a.account.Address
	return a.afterWalletChange(func() tea.Msg {
		accounts, err := s.Wallet().Accounts(ctx)
		if err != nil {
			return errMsg{op: "accounts", err: err}
		}
		if len(accounts) == 0 {
			return errMsg{op: "accounts", err: wallet.ErrNoAccounts}
		}
		next := accounts[0]
		for i, acct := range accounts {
			if acct.Address == current {
				next = accounts[(i+1)%len(accounts)]
			}
		}
		acct, err := s.Use(ctx, next.Address)
		if err != nil {
			return errMsg{op: "switch account", err: err}
		}
		return statusMsg("Using " + acct.Name + " " + wallet.ShortAddress(acct.Address))
	})
}

func (a *App) copyText(text string) tea.Cmd {
	write := a.deps.Clipboard
	return func() tea.Msg {
		if err := write(text); err != nil {
			return errMsg{op: "copy", err: err}
		}
		return copiedMsg(wallet.ShortAddress(text))
	}
}

// startTip fetches fresh balances for the connected account before the
// wizard opens, so the asset list reflects earlier tips.
func (a *App) startTip(r tip.Recipient) tea.Cmd {
	if a.account == nil || a.deps.Session == nil || a.deps.Session.Wallet() == nil {
		a.status = "Connect a wallet to send tips (press 3, then c)"
		return nil
	}
	w, addr, ctx := a.deps.Session.Wallet(), a.account.Address, a.ctx
	return func() tea.Msg {
		assets, err := w.Balances(ctx, addr)
		return tipReadyMsg{recipient: r, assets: assets, err: err}
	}
}
