package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/pkg/browser"

	"github.com/ekene/oryo/internal/config"
	"github.com/ekene/oryo/internal/database/repository"
	"github.com/ekene/oryo/internal/identity"
	"github.com/ekene/oryo/internal/logging"
	"github.com/ekene/oryo/internal/service"
	"github.com/ekene/oryo/internal/tip"
	"github.com/ekene/oryo/internal/wallet"
)

// App is the root bubbletea model.
type App struct {
	ctx    context.Context
	cfg    config.Config
	wizard tip.Config
	deps   Deps
	nav    service.Navigator
	log    *log.Logger

	route         string
	width, height int
	status        string
	cursor        map[string]int

	account  *wallet.Account
	balances []tip.Asset
	history  []repository.TipRecord

	creators    []repository.Creator
	posts       []repository.Post
	communities []repository.Community
	events      []repository.Event
	detail      *creatorDetail

	search        textinput.Model
	searchFocused bool
	results       *service.SearchResults

	profile     repository.Profile
	form        *profileForm
	loggingIn   bool
	loginSeq    int
	loginCancel context.CancelFunc

	tip    *tipFlow
	tipSeq int
}

// newInput returns a text input honouring ui.static_cursor.
func (a *App) newInput() textinput.Model {
	in := textinput.New()
	if a.cfg.UI.StaticCursor {
		in.Cursor.SetMode(cursor.CursorStatic)
	}
	return in
}

// Deps are the repositories and services the views read and write through.
type Deps struct {
	Session     *wallet.Session
	Tips        *service.TipService
	Search      *service.SearchService
	Profiles    *service.ProfileService
	Creators    *repository.CreatorRepo
	Posts       *repository.PostRepo
	Communities *repository.CommunityRepo
	Events      *repository.EventRepo
	Badges      *repository.BadgeRepo
	// Identity is nil when OAuth is not configured.
	Identity *identity.Provider
	OpenURL  func(string) error
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
	// SaveConfig persists settings changed from the TUI. Nil keeps them
	// for this run only.
	SaveConfig func(config.Config) error
	Logger    *log.Logger
}

type creatorDetail struct {
	creator repository.Creator
	badges  []repository.Badge
	posts   []repository.Post
}

func New(ctx context.Context, cfg config.Config, deps Deps) *App {
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}
	if deps.OpenURL == nil {
		deps.OpenURL = browser.OpenURL
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	a := &App{
		ctx:    ctx,
		cfg:    cfg,
		wizard: cfg.WizardConfig(),
		deps:   deps,
		log:    deps.Logger,
		route:  "/feed",
		cursor: map[string]int{},
	}
	a.search = a.newInput()
	a.search.Placeholder = "creators, communities, posts"
	a.search.Prompt = "search> "
	a.search.CharLimit = 80
	if r, ok := a.nav.Lookup(cfg.UI.StartView); ok {
		a.route = r.Path
	}
	if deps.Session != nil {
		if acct, ok := deps.Session.Account(); ok {
			a.account = &acct
		}
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCatalogue(), a.loadWallet(), a.enterRoute(a.route))
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			a.closeTip()
			return a, tea.Quit
		}
		if a.tip != nil {
			return a.handleTipKey(m)
		}
		if a.form != nil {
			return a.handleFormKey(m)
		}
		if a.route == "/search" && a.searchFocused {
			return a.handleSearchKey(m)
		}
		return a.handleKey(m)
	case spinner.TickMsg:
		if a.tip != nil && a.tip.wiz.Step() == tip.StepProcessing {
			var cmd tea.Cmd
			a.tip.spin, cmd = a.tip.spin.Update(m)
			return a, cmd
		}
	case catalogueMsg:
		a.creators, a.posts, a.communities, a.events = m.creators, m.posts, m.communities, m.events
		a.clampCursors()
		if a.detail != nil {
			for _, c := range a.creators {
				if c.ID == a.detail.creator.ID {
					a.detail.creator = c
				}
			}
		}
	case walletMsg:
		a.account = m.account
		a.balances = m.balances
		a.history = m.history
		a.clampCursors()
	case historyMsg:
		a.history = []repository.TipRecord(m)
		a.clampCursors()
	case creatorDetailMsg:
		a.detail = &creatorDetail{creator: m.creator, badges: m.badges, posts: m.posts}
	case searchMsg:
		res := service.SearchResults(m)
		a.results = &res
		a.cursor["/search"] = 0
	case profileMsg:
		a.profile = repository.Profile(m)
	case profileSavedMsg:
		a.profile = m.profile
		a.form = nil
		a.status = m.note
	case loginMsg:
		if !a.loggingIn || m.id != a.loginSeq {
			break
		}
		a.endLogin()
		if errors.Is(m.err, context.DeadlineExceeded) {
			a.status = "Sign-in timed out, press o to try again"
			break
		}
		if m.err != nil {
			a.setError("login", m.err)
			break
		}
		a.profile = m.profile
		a.status = "Signed in as " + nonEmpty(m.profile.Name, m.profile.Handle)
	case tipReadyMsg:
		if m.err != nil {
			a.setError("balances", m.err)
			break
		}
		return a, a.openTip(m.recipient, m.assets)
	case tipResultMsg:
		return a, a.resolveTip(m)
	case tipAutoCloseMsg:
		if a.tip != nil && a.tip.id == m.id && a.tip.wiz.Step() == tip.StepSuccess {
			return a, a.finishTip()
		}
	case copiedMsg:
		a.status = "Copied " + string(m) + " to clipboard"
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.setError(m.op, m.err)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := m.String()
	switch key {
	case "q":
		return a, tea.Quit
	case "tab":
		return a, a.cycleRoute(1)
	case "shift+tab":
		return a, a.cycleRoute(-1)
	case "up", "k":
		a.moveCursor(-1)
		return a, nil
	case "down", "j":
		a.moveCursor(1)
		return a, nil
	}
	for _, r := range a.nav.Routes() {
		if key == r.Key {
			return a, a.enterRoute(r.Path)
		}
	}

	switch a.route {
	case "/feed":
		return a, a.feedKey(key)
	case "/creators":
		return a, a.creatorsKey(key)
	case "/wallet":
		return a, a.walletKey(key)
	case "/search":
		return a, a.searchKey(key)
	case "/communities":
		if key == "enter" || key == " " {
			if c, ok := at(a.communities, a.cursor["/communities"]); ok {
				return a, a.toggleJoin(c)
			}
		}
	case "/profile":
		return a, a.profileKey(key)
	case "/tips":
		switch key {
		case "r":
			return a, a.loadHistory()
		case "v":
			return a, a.toggleTipVariant()
		}
	}
	return a, nil
}

// toggleTipVariant switches between the full and compact tip flows and
// saves the choice.
func (a *App) toggleTipVariant() tea.Cmd {
	if a.wizard.CombinedAmountAsset {
		a.cfg.Tip.Variant = "full"
	} else {
		a.cfg.Tip.Variant = "compact"
	}
	a.wizard = a.cfg.WizardConfig()
	a.status = "Tip flow: " + a.cfg.Tip.Variant
	save, cfg := a.deps.SaveConfig, a.cfg
	if save == nil {
		return nil
	}
	return func() tea.Msg {
		if err := save(cfg); err != nil {
			return errMsg{op: "save settings", err: err}
		}
		return nil
	}
}

func (a *App) feedKey(key string) tea.Cmd {
	p, ok := at(a.posts, a.cursor["/feed"])
	if !ok {
		return nil
	}
	switch key {
	case "t":
		c := a.creatorByID(p.CreatorID)
		if c == nil {
			return nil
		}
		r := recipientFor(*c)
		r.PostID = p.ID
		return a.startTip(r)
	case "enter":
		a.route = "/creators"
		return a.loadCreatorDetail(p.CreatorID)
	}
	return nil
}

func (a *App) creatorsKey(key string) tea.Cmd {
	c, ok := at(a.creators, a.cursor["/creators"])
	if a.detail != nil {
		c, ok = a.detail.creator, true
	}
	if !ok {
		return nil
	}
	switch key {
	case "enter":
		return a.loadCreatorDetail(c.ID)
	case "esc", "backspace":
		a.detail = nil
	case "f":
		return a.toggleFollow(c)
	case "t":
		return a.startTip(recipientFor(c))
	}
	return nil
}

func (a *App) walletKey(key string) tea.Cmd {
	switch key {
	case "c":
		a.status = "Connecting wallet..."
		return a.connectWallet()
	case "x":
		return a.disconnectWallet()
	case "a":
		return a.switchAccount()
	case "r":
		return a.loadWallet()
	case "y":
		if a.account == nil {
			a.status = "No wallet connected"
			return nil
		}
		return a.copyText(a.account.Address)
	}
	return nil
}

func (a *App) searchKey(key string) tea.Cmd {
	switch key {
	case "/", "enter", "i":
		a.searchFocused = true
		return a.search.Focus()
	case "t":
		if a.results == nil {
			return nil
		}
		if c, ok := at(a.results.Creators, a.cursor["/search"]); ok {
			return a.startTip(recipientFor(c))
		}
	case "esc":
		a.search.SetValue("")
		a.results = nil
	}
	return nil
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.searchFocused = false
		a.search.Blur()
		return a, nil
	case tea.KeyEnter:
		a.searchFocused = false
		a.search.Blur()
		return a, a.runSearch(a.search.Value())
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(m)
	return a, cmd
}

func (a *App) profileKey(key string) tea.Cmd {
	switch key {
	case "e":
		if a.account == nil {
			a.status = wallet.ErrNotConnected.Error()
			return nil
		}
		a.form = newProfileForm(a.profile, a.newInput)
		return a.form.focus()
	case "o":
		return a.login()
	case "esc":
		a.cancelLogin()
	}
	return nil
}

func (a *App) cycleRoute(delta int) tea.Cmd {
	routes := a.nav.Routes()
	i := a.nav.Index(a.route)
	i = (i + delta + len(routes)) % len(routes)
	return a.enterRoute(routes[i].Path)
}

// enterRoute switches view and loads whatever that view reads lazily.
func (a *App) enterRoute(path string) tea.Cmd {
	r, ok := a.nav.Lookup(path)
	if !ok {
		return nil
	}
	leaving := a.route
	a.route = r.Path
	a.status = ""
	if leaving == "/profile" && a.route != "/profile" {
		a.cancelLogin()
	}
	switch a.route {
	case "/wallet":
		return a.loadWallet()
	case "/tips":
		return a.loadHistory()
	case "/profile":
		return a.loadProfile()
	case "/creators":
		a.detail = nil
	}
	return nil
}

func (a *App) listLen(route string) int {
	switch route {
	case "/feed":
		return len(a.posts)
	case "/creators":
		return len(a.creators)
	case "/wallet":
		return len(a.balances)
	case "/search":
		if a.results == nil {
			return 0
		}
		return len(a.results.Creators)
	case "/communities":
		return len(a.communities)
	case "/events":
		return len(a.events)
	case "/tips":
		return len(a.history)
	}
	return 0
}

func (a *App) moveCursor(delta int) {
	if a.route == "/creators" && a.detail != nil {
		return
	}
	n := a.listLen(a.route)
	c := a.cursor[a.route] + delta
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	a.cursor[a.route] = c
}

func (a *App) clampCursors() {
	for route, c := range a.cursor {
		if n := a.listLen(route); c >= n {
			a.cursor[route] = max(0, n-1)
		}
	}
}

func (a *App) creatorByID(id string) *repository.Creator {
	for i := range a.creators {
		if a.creators[i].ID == id {
			return &a.creators[i]
		}
	}
	return nil
}

func (a *App) setError(op string, err error) {
	a.log.Error(op, "err", err)
	switch {
	case errors.Is(err, wallet.ErrNoWallet), errors.Is(err, identity.ErrNotConfigured):
		a.status = err.Error()
	case tip.Classify(err) == tip.KindValidation:
		a.status = tip.Describe(err)
	default:
		a.status = fmt.Sprintf("%s failed: %v", op, err)
	}
}

func recipientFor(c repository.Creator) tip.Recipient {
	return tip.Recipient{ID: c.ID, Name: c.Name, Handle: c.Handle, Address: c.Address}
}

func at[T any](list []T, i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(list) {
		return zero, false
	}
	return list[i], true
}

func nonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// messages
type catalogueMsg struct {
	creators    []repository.Creator
	posts       []repository.Post
	communities []repository.Community
	events      []repository.Event
}

type walletMsg struct {
	account  *wallet.Account
	balances []tip.Asset
	history  []repository.TipRecord
}

type historyMsg []repository.TipRecord

type creatorDetailMsg struct {
	creator repository.Creator
	badges  []repository.Badge
	posts   []repository.Post
}

type searchMsg service.SearchResults

type profileMsg repository.Profile

type profileSavedMsg struct {
	profile repository.Profile
	note    string
}

type loginMsg struct {
	id      int
	profile repository.Profile
	err     error
}

type copiedMsg string

type statusMsg string

type errMsg struct {
	op  string
	err error
}
