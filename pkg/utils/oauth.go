package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/seatcall/seatcall/internal/config"
)

const (
	AuthPort     = 3000
	authTimeout  = 5 * time.Minute
	callbackPath = "/oauth/callback"
	tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
)

// OAuth scopes for Google APIs
const (
	ScopeSheets    = "https://www.googleapis.com/auth/spreadsheets"
	ScopeGmailSend = "https://www.googleapis.com/auth/gmail.send"
)

var (
	// tokens caches one token per environment for the life of the process
	tokens   = make(map[string]*oauth2.Token)
	tokensMu sync.Mutex
)

func requiredScopes() []string {
	return []string{ScopeSheets, ScopeGmailSend}
}

// GetOAuthConfig creates an OAuth2 config from the OAuth client configuration.
// Sheets (candidate import, call publishing) and Gmail (call notices) are requested upfront
// so one consent covers every command.
func GetOAuthConfig(oauthCfg *config.OAuthClientConfig) (*oauth2.Config, error) {
	raw, err := json.Marshal(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal oauth config: %w", err)
	}

	googleConfig, err := google.ConfigFromJSON(raw, requiredScopes()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google config: %w", err)
	}

	googleConfig.RedirectURL = fmt.Sprintf("http://localhost:%d%s", AuthPort, callbackPath)
	return googleConfig, nil
}

// AuthorizedClient returns an HTTP client that signs requests with token and refreshes it
// through the application's OAuth client
func AuthorizedClient(ctx context.Context, oauthCfg *config.OAuthClientConfig, token *oauth2.Token) (*http.Client, error) {
	oauthConfig, err := GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}
	return oauthConfig.Client(ctx, token), nil
}

// GetTokenWithFlow returns a token for env with every required scope. It tries, in order,
// the in-memory cache, the token file (refreshing it when expired) and finally the browser
// consent flow. Only one flow runs at a time.
func GetTokenWithFlow(ctx context.Context, oauthConfig *oauth2.Config, env string) (*oauth2.Token, error) {
	tokensMu.Lock()
	defer tokensMu.Unlock()

	if cached := tokens[env]; cached != nil && cached.Valid() {
		return cached, nil
	}

	store, err := NewTokenFile(env)
	if err != nil {
		return nil, err
	}

	if token := reuseStoredToken(ctx, oauthConfig, store); token != nil {
		tokens[env] = token
		return token, nil
	}

	fmt.Println("No valid token found - starting OAuth flow")
	token, err := authorize(ctx, oauthConfig)
	if err != nil {
		return nil, err
	}

	if err := store.Save(token); err != nil {
		// The token is still usable for this process
		fmt.Printf("Warning: failed to save token to file: %v\n", err)
	}

	tokens[env] = token
	return token, nil
}

// reuseStoredToken returns the saved token, refreshed if needed, or nil when a new consent
// is required. A token lacking scopes is deleted so the next flow replaces it.
func reuseStoredToken(ctx context.Context, oauthConfig *oauth2.Config, store *TokenFile) *oauth2.Token {
	token, err := store.Load()
	if err != nil {
		fmt.Printf("Warning: failed to load token from file: %v\n", err)
		return nil
	}
	if token == nil {
		return nil
	}

	refreshed := false
	if !token.Valid() {
		if token.RefreshToken == "" {
			return nil
		}
		fresh, err := oauthConfig.TokenSource(ctx, token).Token()
		if err != nil {
			fmt.Printf("Warning: failed to refresh token: %v\n", err)
			return nil
		}
		token, refreshed = fresh, true
	}

	if err := validateTokenScopes(ctx, token); err != nil {
		fmt.Printf("Saved token cannot be used: %v\n", err)
		if err := store.Delete(); err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		return nil
	}

	if refreshed {
		fmt.Println("Token refreshed successfully")
		if err := store.Save(token); err != nil {
			fmt.Printf("Warning: failed to save refreshed token: %v\n", err)
		}
	}
	return token
}

// authorize runs the browser consent flow and exchanges the returned code
func authorize(ctx context.Context, oauthConfig *oauth2.Config) (*oauth2.Token, error) {
	state := uuid.NewString()
	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Printf("\nVisit this URL to authorize the application:\n%s\n\n", authURL)

	code, err := listenForAuthCallback(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization code: %w", err)
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if err := validateTokenScopes(ctx, token); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	return token, nil
}

// validateTokenScopes asks Google's tokeninfo endpoint which scopes the token carries
func validateTokenScopes(ctx context.Context, token *oauth2.Token) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenInfoURL+"?access_token="+token.AccessToken, nil)
	if err != nil {
		return fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call tokeninfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tokeninfo request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var info struct {
		Scope string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	if missing := missingScopes(info.Scope); len(missing) > 0 {
		return fmt.Errorf("token is missing required scopes: %v", missing)
	}
	return nil
}

// missingScopes returns the required scopes absent from a space separated grant
func missingScopes(granted string) []string {
	grantedScopes := strings.Fields(granted)
	var missing []string
	for _, required := range requiredScopes() {
		if !slices.Contains(grantedScopes, required) {
			missing = append(missing, required)
		}
	}
	return missing
}

// listenForAuthCallback serves the redirect URI until Google calls back, the context ends
// or authTimeout passes
func listenForAuthCallback(ctx context.Context, state string) (string, error) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", AuthPort),
		Handler:           callbackHandler(state, codeChan, errChan),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	var code string
	var authErr error
	select {
	case code = <-codeChan:
	case authErr = <-errChan:
	case <-timeoutCtx.Done():
		authErr = fmt.Errorf("authorization timeout after %v", authTimeout)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	return code, authErr
}

// callbackHandler serves the OAuth redirect and forwards the authorization code. Each flow
// gets its own mux so repeated logins in one process do not re-register the route.
func callbackHandler(state string, codeChan chan<- string, errChan chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if reason := query.Get("error"); reason != "" {
			errChan <- fmt.Errorf("authorization denied: %s", reason)
			http.Error(w, "Autorização negada", http.StatusForbidden)
			return
		}

		// Stray requests must not end the flow
		if query.Get("state") != state {
			http.Error(w, "Estado inválido", http.StatusBadRequest)
			return
		}

		code := query.Get("code")
		if code == "" {
			errChan <- errors.New("no authorization code received")
			http.Error(w, "Código de autorização ausente", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html>
	<head><title>seatcall</title></head>
	<body>
		<h1>Autorização concluída</h1>
		<p>Você pode fechar esta janela e voltar ao terminal.</p>
	</body>
</html>`)

		codeChan <- code
	})
	return mux
}

// ClearToken drops every cached token so the next call reads the token file again
func ClearToken() {
	tokensMu.Lock()
	defer tokensMu.Unlock()
	clear(tokens)
}
