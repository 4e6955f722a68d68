package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOAuthClient() *OAuthClientConfig {
	return &OAuthClientConfig{
		Installed: OAuthInstalled{
			ClientID:                "test-client-id.apps.googleusercontent.com",
			ProjectID:               "test-project",
			AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
			TokenURI:                "https://oauth2.googleapis.com/token",
			AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
			ClientSecret:            "test-secret",
			RedirectURIs:            []string{"http://localhost"},
		},
	}
}

func TestValidateOAuthClient(t *testing.T) {
	assert.NoError(t, ValidateOAuthClient(validOAuthClient()))

	missingID := validOAuthClient()
	missingID.Installed.ClientID = ""
	assert.ErrorContains(t, ValidateOAuthClient(missingID), "validation failed")

	badURL := validOAuthClient()
	badURL.Installed.AuthURI = "not-a-valid-url"
	assert.ErrorContains(t, ValidateOAuthClient(badURL), "validation failed")

	noRedirects := validOAuthClient()
	noRedirects.Installed.RedirectURIs = []string{}
	assert.ErrorContains(t, ValidateOAuthClient(noRedirects), "validation failed")
}

func TestLoadOAuthClientFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauthClient.json")
	content := `{"installed":{"client_id":"id","project_id":"seatcall","auth_uri":"https://accounts.google.com/o/oauth2/auth",
"token_uri":"https://oauth2.googleapis.com/token","auth_provider_x509_cert_url":"https://www.googleapis.com/oauth2/v1/certs",
"client_secret":"secret","redirect_uris":["http://localhost"]}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadOAuthClientFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "seatcall", cfg.Installed.ProjectID)

	require.NoError(t, os.WriteFile(path, []byte(`{"installed":{}}`), 0600))
	_, err = LoadOAuthClientFromPath(path)
	assert.Error(t, err)
}
