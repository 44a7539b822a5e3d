package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"

	"github.com/bristoevents/eventmail/internal/logger"
)

// ErrNoAccounts is returned when the authenticated identity owns no mail accounts.
var ErrNoAccounts = errors.New("zoho: no mail accounts found")

// APIError is a non-success response from the Zoho Mail API.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zoho: %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// ZohoConfig holds the configuration for the Zoho Mail API sender.
type ZohoConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// TokenURL is the OAuth2 token endpoint.
	TokenURL string
	// APIBase is the accounts endpoint, e.g. https://mail.zoho.com/api/accounts.
	APIBase string
	// FromAddress is sent as fromAddress and must belong to the account.
	FromAddress string
	// Timeout bounds every HTTP call. Zero means 15s.
	Timeout time.Duration
	// LegacySilentSendFailure logs a non-200 final send and reports success.
	LegacySilentSendFailure bool
	// HTTPClient overrides the client used for every call.
	HTTPClient *http.Client
}

// ZohoSender implements Sender using the Zoho Mail REST API. Every Send
// performs the full sequence: refresh-token exchange, account discovery,
// message send. Nothing is cached between sends.
type ZohoSender struct {
	oauth        *oauth2.Config
	refreshToken string
	apiBase      string
	fromAddress  string
	silent       bool
	client       *http.Client
	rest         *resty.Client
	log          *logger.Logger
}

// NewZohoSender creates a new ZohoSender.
func NewZohoSender(cfg ZohoConfig, log *logger.Logger) (*ZohoSender, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("zoho: client id, client secret and refresh token are required")
	}
	if cfg.TokenURL == "" || cfg.APIBase == "" {
		return nil, fmt.Errorf("zoho: token URL and API base are required")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("zoho: from address is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &ZohoSender{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		refreshToken: cfg.RefreshToken,
		apiBase:      strings.TrimSuffix(cfg.APIBase, "/"),
		fromAddress:  cfg.FromAddress,
		silent:       cfg.LegacySilentSendFailure,
		client:       client,
		rest:         resty.NewWithClient(client),
		log:          log.WithComponent("zoho"),
	}, nil
}

// AccessToken exchanges the refresh token for a short-lived access token.
func (z *ZohoSender) AccessToken(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, z.client)
	tok, err := z.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: z.refreshToken}).Token()
	if err != nil {
		return "", fmt.Errorf("zoho: token exchange failed: %w", err)
	}
	return tok.AccessToken, nil
}

type accountsResponse struct {
	Data []struct {
		AccountID json.Number `json:"accountId"`
	} `json:"data"`
}

// AccountID returns the first mail account listed for the token's identity.
func (z *ZohoSender) AccountID(ctx context.Context, accessToken string) (string, error) {
	resp, err := z.request(ctx, accessToken).Get(z.apiBase)
	if err != nil {
		return "", fmt.Errorf("zoho: list accounts: %w", err)
	}
	if !resp.IsSuccess() {
		return "", &APIError{Op: "list accounts", StatusCode: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}

	var accounts accountsResponse
	if err := json.Unmarshal(resp.Body(), &accounts); err != nil {
		return "", fmt.Errorf("zoho: failed to decode accounts: %w", err)
	}
	if len(accounts.Data) == 0 || accounts.Data[0].AccountID == "" {
		return "", ErrNoAccounts
	}
	return accounts.Data[0].AccountID.String(), nil
}

// DiscoverAccount authenticates and returns the sending account id.
func (z *ZohoSender) DiscoverAccount(ctx context.Context) (string, error) {
	token, err := z.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	return z.AccountID(ctx, token)
}

type sendRequest struct {
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
	Subject     string `json:"subject"`
	MailFormat  string `json:"mailFormat"`
	Content     string `json:"content"`
}

// Send sends an email via the Zoho Mail API.
func (z *ZohoSender) Send(ctx context.Context, msg Message) error {
	token, err := z.AccessToken(ctx)
	if err != nil {
		return err
	}

	accountID, err := z.AccountID(ctx, token)
	if err != nil {
		return err
	}

	payload := sendRequest{
		FromAddress: z.fromAddress,
		ToAddress:   msg.To,
		Subject:     msg.Subject,
		MailFormat:  "html",
		Content:     msg.HTMLBody,
	}
	if msg.HTMLBody == "" {
		payload.MailFormat = "plaintext"
		payload.Content = msg.TextBody
	}

	resp, err := z.request(ctx, token).
		SetBody(payload).
		Post(fmt.Sprintf("%s/%s/messages", z.apiBase, accountID))
	if err != nil {
		return fmt.Errorf("zoho: send message: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		apiErr := &APIError{Op: "send message", StatusCode: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
		if z.silent {
			z.log.Warn().Err(apiErr).Msg("send failed; reporting success (legacy_silent_send_failure)")
			return nil
		}
		return apiErr
	}

	return nil
}

// request starts an API call authorized with the Zoho OAuth scheme
func (z *ZohoSender) request(ctx context.Context, accessToken string) *resty.Request {
	return z.rest.R().
		SetContext(ctx).
		SetAuthScheme("Zoho-oauthtoken").
		SetAuthToken(accessToken).
		SetHeader("Accept", "application/json")
}
