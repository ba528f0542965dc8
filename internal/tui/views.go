package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/ekene/oryo/internal/database/repository"
	"github.com/ekene/oryo/internal/tip"
	"github.com/ekene/oryo/internal/wallet"
)

const defaultDateFormat = "Mon 02 Jan 15:04"

func (a *App) View() string {
	header := a.renderHeader()
	body := a.renderBody()
	status := a.renderStatus()

	base := strings.Join([]string{header, "", body, status}, "\n")
	if a.tip != nil {
		return overlay(base, a.renderTip(), a.width, a.height)
	}
	return base
}

func (a *App) renderHeader() string {
	tabs := make([]string, 0, len(a.nav.Routes()))
	for _, r := range a.nav.Routes() {
		label := r.Key + ":" + r.Label
		if r.Path == a.route {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	line := accentStyle.Render("oryo") + " " + strings.Join(tabs, "")
	if a.width > 0 {
		line = ansi.Truncate(line, a.width, "")
	}
	return line
}

func (a *App) renderStatus() string {
	acct := mutedStyle.Render("not connected")
	if a.account != nil {
		acct = okStyle.Render(a.account.Name + " " + wallet.ShortAddress(a.account.Address))
	}
	if a.status == "" {
		return "\n" + acct
	}
	return "\n" + acct + "  " + a.status
}

func (a *App) renderBody() string {
	switch a.route {
	case "/feed":
		return a.feedView()
	case "/creators":
		if a.detail != nil {
			return a.creatorDetailView()
		}
		return a.creatorsView()
	case "/wallet":
		return a.walletView()
	case "/search":
		return a.searchView()
	case "/communities":
		return a.communitiesView()
	case "/events":
		return a.eventsView()
	case "/profile":
		return a.profileView()
	case "/tips":
		return a.tipsView()
	}
	return ""
}

func (a *App) feedView() string {
	if len(a.posts) == 0 {
		return mutedStyle.Render("Nothing in the feed yet.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Feed") + "\n\n")
	for i, p := range a.posts {
		fmt.Fprintf(&b, "%s %s %s\n", marker(i == a.cursor["/feed"]), accentStyle.Render(p.CreatorName), mutedStyle.Render(p.CreatorHandle))
		fmt.Fprintf(&b, "  %s\n", p.Body)
		fmt.Fprintf(&b, "  %s\n\n", mutedStyle.Render(fmt.Sprintf("♥ %d  tips %d  %s", p.Likes, p.TipsCount, a.formatDate(p))))
	}
	b.WriteString(mutedStyle.Render("[t] Tip creator  [enter] Open creator"))
	return b.String()
}

func (a *App) formatDate(p repository.Post) string {
	if p.CreatedAt.IsZero() {
		return ""
	}
	return p.CreatedAt.Local().Format(a.dateFormat())
}

func (a *App) dateFormat() string {
	if a.cfg.UI.DateFormat != "" {
		return a.cfg.UI.DateFormat
	}
	return defaultDateFormat
}

func (a *App) creatorsView() string {
	if len(a.creators) == 0 {
		return mutedStyle.Render("No creators yet.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Creators") + "\n\n")
	for i, c := range a.creators {
		follow := ""
		if c.Following {
			follow = okStyle.Render(" following")
		}
		fmt.Fprintf(&b, "%s %-20s %-14s %6d followers %4d tips%s\n",
			marker(i == a.cursor["/creators"]), c.Name, mutedStyle.Render(c.Handle), c.Followers, c.TipsCount, follow)
	}
	b.WriteString("\n" + mutedStyle.Render("[enter] Details  [f] Follow  [t] Tip"))
	return b.String()
}

func (a *App) creatorDetailView() string {
	d := a.detail
	c := d.creator
	var b strings.Builder
	b.WriteString(titleStyle.Render(c.Name) + " " + mutedStyle.Render(c.Handle) + "\n")
	if c.Following {
		b.WriteString(okStyle.Render("following") + "\n")
	}
	if c.Bio != "" {
		b.WriteString("\n" + c.Bio + "\n")
	}
	fmt.Fprintf(&b, "\n%d followers  %d tips  %s\n", c.Followers, c.TipsCount, mutedStyle.Render(wallet.ShortAddress(c.Address)))
	if len(d.badges) > 0 {
		names := make([]string, 0, len(d.badges))
		for _, bg := range d.badges {
			names = append(names, strings.TrimSpace(bg.Icon+" "+bg.Name))
		}
		b.WriteString("\n" + strings.Join(names, "  ") + "\n")
	}
	if len(d.posts) > 0 {
		b.WriteString("\n" + accentStyle.Render("Posts") + "\n")
		for _, p := range d.posts {
			fmt.Fprintf(&b, "  • %s %s\n", p.Body, mutedStyle.Render(fmt.Sprintf("(%d tips)", p.TipsCount)))
		}
	}
	b.WriteString("\n" + mutedStyle.Render("[t] Tip  [f] Follow  [esc] Back"))
	return b.String()
}

func (a *App) walletView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Wallet") + "\n\n")
	if a.account == nil {
		b.WriteString("No wallet connected  " + accentStyle.Render("[c] Connect"))
		return b.String()
	}
	fmt.Fprintf(&b, "%s\n%s\n\n", accentStyle.Render(a.account.Name), a.account.Address)
	if len(a.balances) == 0 {
		b.WriteString(mutedStyle.Render("No balances") + "\n")
	}
	for i, as := range a.balances {
		fmt.Fprintf(&b, "%s %-5s %14s  %s%s\n", marker(i == a.cursor["/wallet"]), as.Symbol, as.FormatBalance(), a.cfg.UI.CurrencySymbol, as.USDValue().StringFixed(2))
	}
	b.WriteString("\n" + mutedStyle.Render("[y] Copy address  [a] Switch account  [r] Refresh  [x] Disconnect"))
	return b.String()
}

func (a *App) searchView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Search") + "\n\n")
	b.WriteString(a.search.View() + "\n\n")
	res := a.results
	switch {
	case res == nil:
		b.WriteString(mutedStyle.Render("[/] Type to search  [enter] Run"))
		return b.String()
	case res.Empty():
		fmt.Fprintf(&b, "No results for %q\n", res.Query)
		if res.Suggestion != "" {
			b.WriteString(accentStyle.Render("Did you mean "+res.Suggestion+"?") + "\n")
		}
		return b.String()
	}
	if len(res.Creators) > 0 {
		b.WriteString(accentStyle.Render("Creators") + "\n")
		for i, c := range res.Creators {
			fmt.Fprintf(&b, "%s %s %s\n", marker(i == a.cursor["/search"]), c.Name, mutedStyle.Render(c.Handle))
		}
	}
	if len(res.Communities) > 0 {
		b.WriteString("\n" + accentStyle.Render("Communities") + "\n")
		for _, c := range res.Communities {
			fmt.Fprintf(&b, "  %s %s\n", c.Name, mutedStyle.Render(fmt.Sprintf("%d members", c.Members)))
		}
	}
	if len(res.Posts) > 0 {
		b.WriteString("\n" + accentStyle.Render("Posts") + "\n")
		for _, p := range res.Posts {
			fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render(p.CreatorName+":"), p.Body)
		}
	}
	b.WriteString("\n" + mutedStyle.Render("[t] Tip creator  [esc] Clear"))
	return b.String()
}

func (a *App) communitiesView() string {
	if len(a.communities) == 0 {
		return mutedStyle.Render("No communities yet.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Communities") + "\n\n")
	for i, c := range a.communities {
		joined := ""
		if c.Joined {
			joined = okStyle.Render(" joined")
		}
		fmt.Fprintf(&b, "%s %-24s %6d members%s\n", marker(i == a.cursor["/communities"]), c.Name, c.Members, joined)
		if c.Description != "" {
			fmt.Fprintf(&b, "  %s\n", mutedStyle.Render(c.Description))
		}
	}
	b.WriteString("\n" + mutedStyle.Render("[enter] Join or leave"))
	return b.String()
}

func (a *App) eventsView() string {
	if len(a.events) == 0 {
		return mutedStyle.Render("No upcoming events.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Events") + "\n\n")
	for i, e := range a.events {
		fmt.Fprintf(&b, "%s %s\n", marker(i == a.cursor["/events"]), accentStyle.Render(e.Title))
		host := ""
		if e.HostName != "" {
			host = "  hosted by " + e.HostName
		}
		fmt.Fprintf(&b, "  %s  %s  %d going%s\n", e.StartsAt.Local().Format(a.dateFormat()), e.Location, e.Attendees, host)
	}
	return b.String()
}

func (a *App) profileView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profile") + "\n\n")
	if a.account == nil {
		b.WriteString("Connect a wallet to set up your profile. Press 3, then c.")
		return b.String()
	}
	if f := a.form; f != nil {
		for i, fld := range f.fields {
			label := fmt.Sprintf("%-8s", fld.label)
			if i == f.active {
				label = accentStyle.Render(label)
			}
			fmt.Fprintf(&b, "%s %s %s\n", marker(i == f.active), label, fld.input.View())
		}
		b.WriteString("\n" + mutedStyle.Render("[tab] Next field  [enter] Save  [esc] Cancel"))
		return b.String()
	}
	p := a.profile
	if p.Name == "" && p.Handle == "" {
		b.WriteString("You have not set up a profile yet.\n")
	} else {
		fmt.Fprintf(&b, "%s %s\n", accentStyle.Render(p.Name), mutedStyle.Render(p.Handle))
		rows := [][2]string{{"Bio", p.Bio}, {"Email", p.Email}, {"Website", p.Website}, {"Avatar", p.Avatar}}
		for _, r := range rows {
			if r[1] != "" {
				fmt.Fprintf(&b, "%-8s %s\n", mutedStyle.Render(r[0]), r[1])
			}
		}
	}
	fmt.Fprintf(&b, "%s\n", mutedStyle.Render(a.account.Address))
	help := "[e] Edit  [o] Sign in"
	if a.loggingIn {
		help = "[e] Edit  signing in...  [esc] Cancel"
	}
	b.WriteString("\n" + mutedStyle.Render(help))
	return b.String()
}

func (a *App) variantName() string {
	if a.wizard.CombinedAmountAsset {
		return "compact"
	}
	return "full"
}

func (a *App) tipsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tips sent") + "\n\n")
	if a.account == nil {
		b.WriteString(mutedStyle.Render("Connect a wallet to see your tips."))
		return b.String()
	}
	if len(a.history) == 0 {
		b.WriteString(mutedStyle.Render("No tips yet."))
		return b.String()
	}
	for i, t := range a.history {
		status := okStyle.Render(t.Status)
		if t.Status != tip.StatusConfirmed {
			status = errorStyle.Render(t.Status)
		}
		line := fmt.Sprintf("%s %-10s %10s %-5s %-18s %s", marker(i == a.cursor["/tips"]), status, t.Amount, t.Asset, t.RecipientName, mutedStyle.Render(wallet.ShortAddress(t.TxHash)))
		b.WriteString(line + "\n")
		if t.Error != "" {
			fmt.Fprintf(&b, "  %s\n", errorStyle.Render(t.Error))
		}
		if t.Message != "" {
			fmt.Fprintf(&b, "  %s\n", mutedStyle.Render(t.Message))
		}
	}
	b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("[r] Refresh  [v] Tip flow: %s", a.variantName())))
	return b.String()
}
