package commands

import (
	"fmt"

	"github.com/54b3r/kagent-go/internal/config"
	"github.com/54b3r/kagent-go/internal/docprovider"
)

// graphBaseURL is the Microsoft Graph v1.0 REST root every docprovider.Client
// call is issued against.
const graphBaseURL = "https://graph.microsoft.com/v1.0"

// newDocProviderClient builds the app-credentialed docprovider.Client shared
// by search, download, and the indexing pipeline. Per-request delegated
// access (get_current_user, probe_access) supplies its own
// docprovider.CredentialSource at call time and does not go through this
// client's stored credential.
func newDocProviderClient(cfg *config.Config) (*docprovider.Client, error) {
	if cfg.Identity.TenantID == "" || cfg.Identity.ClientID == "" || cfg.Identity.ClientSecret == "" {
		return nil, fmt.Errorf("commands: AD_TENANT_ID, AD_CLIENT_ID and AD_CLIENT_SECRET are required")
	}
	creds, err := docprovider.NewAppCredentialSource(cfg.Identity.TenantID, cfg.Identity.ClientID, cfg.Identity.ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("commands: failed to build app credential source: %w", err)
	}
	return docprovider.NewClient(graphBaseURL, creds), nil
}
