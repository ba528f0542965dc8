package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	charmlog "github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/ekene/oryo/internal/config"
	"github.com/ekene/oryo/internal/database"
	"github.com/ekene/oryo/internal/database/repository"
	"github.com/ekene/oryo/internal/identity"
	"github.com/ekene/oryo/internal/logging"
	"github.com/ekene/oryo/internal/secrets"
	"github.com/ekene/oryo/internal/service"
	"github.com/ekene/oryo/internal/tui"
	"github.com/ekene/oryo/internal/wallet"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := secrets.Default()
	if err != nil {
		log.Printf("warn: secrets store unavailable: %v", err)
	}
	if len(os.Args) > 1 && os.Args[1] == "secret" {
		if err := secretCmd(store, os.Args[2:]); err != nil {
			log.Fatalf("secret: %v", err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, logFile, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer logFile.Close()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := database.SeedDefaults(ctx, db, database.Now()); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	// repositories
	creators := repository.NewCreatorRepo(db)
	posts := repository.NewPostRepo(db)
	communities := repository.NewCommunityRepo(db)
	events := repository.NewEventRepo(db)
	badges := repository.NewBadgeRepo(db)
	tips := repository.NewTipRepo(db)
	profiles := repository.NewProfileRepo(db)

	w, closeWallet := openWallet(ctx, cfg.Wallet, secrets.Lookup(store, cfg.Wallet.PrivateKeyEnv, secrets.WalletKey), logger)
	defer closeWallet()

	session := wallet.NewSession(w, repository.NewSessionRepo(db))
	if ok, err := session.Restore(ctx); err != nil {
		logger.Warn("restore session", "err", err)
	} else if ok {
		acct, _ := session.Account()
		logger.Info("session restored", "account", acct.Name)
	}

	provider, err := identity.NewProvider(cfg.OAuth, secrets.Lookup(store, cfg.OAuth.ClientSecretEnv, secrets.OAuthSecret))
	if err != nil {
		if !errors.Is(err, identity.ErrNotConfigured) {
			log.Fatalf("oauth: %v", err)
		}
		logger.Info("sign-in disabled, oauth.client_id is empty")
	}

	app := tui.New(ctx, cfg, tui.Deps{
		Session:     session,
		Tips:        &service.TipService{Wallet: w, Tips: tips, Creators: creators, Posts: posts, Logger: logger},
		Search:      &service.SearchService{Creators: creators, Communities: communities, Posts: posts},
		Profiles:    &service.ProfileService{Profiles: profiles},
		Creators:    creators,
		Posts:       posts,
		Communities: communities,
		Events:      events,
		Badges:      badges,
		Identity:    provider,
		SaveConfig:  config.Save,
		Logger:      logger,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Printf("error: %v\n", err)
	}
}

// openWallet builds the configured backend. A missing evm key or RPC URL
// leaves the wallet nil so the TUI can explain how to set one up.
func openWallet(ctx context.Context, c config.WalletConfig, keyHex string, logger *charmlog.Logger) (wallet.Wallet, func()) {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case "evm":
		price, err := decimal.NewFromString(strings.TrimSpace(c.USDPrice))
		if err != nil {
			price = decimal.Zero
		}
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		w, closeFn, err := wallet.DialEVM(dialCtx, c.RPCURL, keyHex, wallet.EVMOptions{
			Symbol:   c.Symbol,
			USDPrice: price,
			ChainID:  c.ChainID,
		})
		if err != nil {
			logger.Error("evm wallet unavailable", "rpc", c.RPCURL, "err", err)
			return nil, func() {}
		}
		logger.Info("evm wallet ready", "rpc", c.RPCURL)
		return w, closeFn
	default:
		logger.Info("dev wallet", "latency", c.Latency, "fail_rate", c.FailRate)
		return wallet.NewDevWallet(wallet.DevOptions{Latency: c.Latency, FailRate: c.FailRate}), func() {}
	}
}

// secretCmd handles "oryo secret set|delete <name>". The value for set is
// read from the first line of stdin so it stays out of shell history.
func secretCmd(store *secrets.Store, args []string) error {
	if store == nil {
		return errors.New("no secrets store")
	}
	if len(args) != 2 {
		return errors.New("usage: oryo secret set|delete wallet|oauth")
	}
	switch args[0] {
	case "set":
		value, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return errors.New("empty value on stdin")
		}
		return store.Put(args[1], value)
	case "delete":
		return store.Delete(args[1])
	default:
		return fmt.Errorf("unknown action %q", args[0])
	}
}
