package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seatcall/seatcall/internal/config"
	"github.com/seatcall/seatcall/pkg/clients/gmailclient"
	"github.com/seatcall/seatcall/pkg/clients/sheetsclient"
	"github.com/seatcall/seatcall/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database db.Database
	Logger   *zap.Logger
	Ctx      context.Context

	oauthCfg     *config.OAuthClientConfig
	sheetsClient *sheetsclient.Client
	gmailClient  *gmailclient.Client
}

// SheetsClient returns the Sheets client, running the OAuth flow on first use. Only the
// import and publish commands need Google access, so the flow is not run at startup.
func (a *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if a.sheetsClient != nil {
		return a.sheetsClient, nil
	}

	oauthCfg, err := a.oauthClient()
	if err != nil {
		return nil, err
	}

	a.Logger.Info("Initializing sheets client")
	a.sheetsClient, err = sheetsclient.NewClient(a.Ctx, oauthCfg, a.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	a.Logger.Debug("Sheets client initialized successfully")

	return a.sheetsClient, nil
}

// GmailClient returns the Gmail client, sharing the Sheets client's token
func (a *AppContext) GmailClient() (*gmailclient.Client, error) {
	if a.gmailClient != nil {
		return a.gmailClient, nil
	}

	sheets, err := a.SheetsClient()
	if err != nil {
		return nil, err
	}

	a.Logger.Info("Initializing gmail client")
	a.gmailClient, err = gmailclient.NewClient(a.Ctx, a.oauthCfg, sheets.Token(), a.Cfg.GmailSender)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	a.Logger.Debug("Gmail client initialized successfully")

	return a.gmailClient, nil
}

func (a *AppContext) oauthClient() (*config.OAuthClientConfig, error) {
	if a.oauthCfg != nil {
		return a.oauthCfg, nil
	}

	a.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(a.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	a.oauthCfg = oauthCfg
	return oauthCfg, nil
}
