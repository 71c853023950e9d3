package docprovider

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/54b3r/kagent-go/internal/kerr"
)

// GraphScope and DefaultScope are the two OAuth scopes this adapter ever
// requests: GraphScope for the per-user On-Behalf-Of exchange, DefaultScope
// for the app-only client-credential flow used by Search/DownloadBytes.
const (
	GraphScope   = "https://graph.microsoft.com/.default"
	DefaultScope = "https://graph.microsoft.com/.default"
)

// AppCredentialSource resolves app-only tokens via client-credential flow,
// used for search and content download where no end-user identity is
// involved.
type AppCredentialSource struct {
	cred *azidentity.ClientSecretCredential
}

func NewAppCredentialSource(tenantID, clientID, clientSecret string) (*AppCredentialSource, error) {
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, kerr.New("docprovider.NewAppCredentialSource", kerr.KindInternal, err)
	}
	return &AppCredentialSource{cred: cred}, nil
}

func (a *AppCredentialSource) Token(ctx context.Context, scope string) (string, error) {
	tok, err := a.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{scope}})
	if err != nil {
		return "", kerr.New("docprovider.AppCredentialSource.Token", kerr.KindUpstream, err)
	}
	return tok.Token, nil
}

// OBOCredentialSource exchanges an inbound delegated user token for a
// downstream Graph/SharePoint token carrying the same user's identity and
// permissions, via azidentity's On-Behalf-Of flow. One instance is
// constructed per chat request, scoped to that request's inbound token —
// it is never shared across requests or cached process-wide.
type OBOCredentialSource struct {
	tenantID     string
	clientID     string
	clientSecret string
	userToken    string
}

func NewOBOCredentialSource(tenantID, clientID, clientSecret, userToken string) *OBOCredentialSource {
	return &OBOCredentialSource{
		tenantID:     tenantID,
		clientID:     clientID,
		clientSecret: clientSecret,
		userToken:    userToken,
	}
}

func (o *OBOCredentialSource) Token(ctx context.Context, scope string) (string, error) {
	cred, err := azidentity.NewOnBehalfOfCredentialWithSecret(
		o.tenantID, o.clientID, o.userToken, o.clientSecret, nil,
	)
	if err != nil {
		return "", kerr.New("docprovider.OBOCredentialSource.Token", kerr.KindUnauthenticated, err)
	}

	tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{scope}})
	if err != nil {
		return "", kerr.New("docprovider.OBOCredentialSource.Token", kerr.KindUnauthenticated, err)
	}
	return tok.Token, nil
}
