// Package cli implements the interactive vault console: a REPL over the
// account, signing, and exchange services.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/spknetwork/oratr-vault/internal/config"
	"github.com/spknetwork/oratr-vault/internal/cryptox"
	"github.com/spknetwork/oratr-vault/internal/keys"
	"github.com/spknetwork/oratr-vault/internal/logging"
	"github.com/spknetwork/oratr-vault/internal/vault/repositories/vaultrec"
	"github.com/spknetwork/oratr-vault/internal/vault/services"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	session  *services.SessionManager
	accounts *services.AccountService
	signing  *services.SigningService
	exchange *services.ExchangeService
	notifier *services.Notifier
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := vaultrec.InitDatabase(ctx, c.DBPath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	logger := logging.NewDefault()
	notifier := services.NewNotifier()
	session := services.NewSessionManager(services.ExpiryPolicy(c.ExpiryPolicy), c.SessionTTL, notifier)
	engine := cryptox.DefaultEngine()

	accounts := services.NewAccountService(session, db, engine, notifier, logger, c.AddressPrefix)
	exchange := services.NewExchangeService(session, accounts, engine, notifier, logger, c.AddressPrefix)
	approvals := services.NewApprovalGateway(c.ApprovalTimeout, notifier)
	signing := services.NewSigningService(
		session,
		keys.NewLocalSigner(),
		nil,
		keys.NewLocalMemoCryptor(c.AddressPrefix),
		approvals,
		notifier,
		logger,
	)

	return &App{
		config:   c,
		session:  session,
		accounts: accounts,
		signing:  signing,
		exchange: exchange,
		notifier: notifier,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isUnlocked() bool {
	return a.session.Unlocked()
}

func (a *App) Run(ctx context.Context) {
	go a.watchEvents(ctx)
	a.Root(ctx)
}

// watchEvents reports session expiry to the user. Other events are the
// direct result of commands and already have their own output.
func (a *App) watchEvents(ctx context.Context) {
	events, cancel := a.notifier.Subscribe()
	defer cancel()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			if e.Type == services.EventSessionExpired {
				log.Println("Session expired, vault locked")
			}
		case <-ctx.Done():
			return
		}
	}
}
