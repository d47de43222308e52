package model

// CredentialKind tags which variant a Credential holds.
type CredentialKind int

const (
	// CredentialNone is the zero value and is never valid for a fetch.
	CredentialNone CredentialKind = iota
	CredentialServiceAccount
	CredentialOAuth
)

func (k CredentialKind) String() string {
	switch k {
	case CredentialServiceAccount:
		return "service_account"
	case CredentialOAuth:
		return "oauth"
	default:
		return "none"
	}
}

// ServiceAccount is a long-lived key payload (Google service account JSON), used as-is.
type ServiceAccount struct {
	JSON []byte
}

// OAuthTokenSet is a user-delegated token pair plus the client used to refresh it.
type OAuthTokenSet struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	Scope        string
}

// Credential is a tagged union over ServiceAccount and OAuthTokenSet.
// Fields are unexported so that exactly one variant can be populated.
type Credential struct {
	kind           CredentialKind
	serviceAccount ServiceAccount
	oauth          OAuthTokenSet
}

func NewServiceAccountCredential(sa ServiceAccount) Credential {
	return Credential{kind: CredentialServiceAccount, serviceAccount: sa}
}

func NewOAuthCredential(ts OAuthTokenSet) Credential {
	return Credential{kind: CredentialOAuth, oauth: ts}
}

func (c Credential) Kind() CredentialKind { return c.kind }

// ServiceAccount returns the payload and true when c holds a service account.
func (c Credential) ServiceAccount() (ServiceAccount, bool) {
	return c.serviceAccount, c.kind == CredentialServiceAccount
}

// OAuth returns the token set and true when c holds OAuth tokens.
func (c Credential) OAuth() (OAuthTokenSet, bool) {
	return c.oauth, c.kind == CredentialOAuth
}

// WithAccessToken returns a copy of an OAuth credential carrying a new access token.
// A refresh response may rotate the refresh token too; an empty value keeps the old one.
func (c Credential) WithAccessToken(accessToken, refreshToken string) Credential {
	if c.kind != CredentialOAuth {
		return c
	}
	ts := c.oauth
	ts.AccessToken = accessToken
	if refreshToken != "" {
		ts.RefreshToken = refreshToken
	}
	return NewOAuthCredential(ts)
}
