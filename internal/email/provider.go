package email

import (
	"context"
	"fmt"

	"github.com/bristoevents/eventmail/internal/config"
	"github.com/bristoevents/eventmail/internal/logger"
)

// NewFromConfig builds the Sender selected by mail.provider, wrapped with
// logging and metrics.
func NewFromConfig(ctx context.Context, cfg config.MailConfig, log *logger.Logger) (Sender, error) {
	var (
		s   Sender
		err error
	)

	switch cfg.Provider {
	case config.ProviderSMTP:
		s, err = NewSMTPFromConfig(cfg)
	case config.ProviderZoho:
		s, err = NewZohoFromConfig(cfg, log)
	case config.ProviderGmail:
		s, err = NewGmailSender(ctx, GmailConfig{
			CredentialsJSON: cfg.Gmail.CredentialsJSON,
			ClientID:        cfg.Gmail.ClientID,
			ClientSecret:    cfg.Gmail.ClientSecret,
			RefreshToken:    cfg.Gmail.RefreshToken,
			SenderAddress:   cfg.SenderAddress,
			SenderName:      cfg.SenderName,
		})
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return Instrument(s, cfg.Provider, log), nil
}

// NewSMTPFromConfig builds an uninstrumented SMTP sender from mail config
func NewSMTPFromConfig(cfg config.MailConfig) (*SMTPSender, error) {
	return NewSMTPSender(SMTPConfig{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		Username:           cfg.SMTP.Username,
		Password:           cfg.SMTP.Password,
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		SenderAddress:      cfg.SenderAddress,
		SenderName:         cfg.SenderName,
	})
}

// NewZohoFromConfig builds an uninstrumented Zoho sender from mail config
func NewZohoFromConfig(cfg config.MailConfig, log *logger.Logger) (*ZohoSender, error) {
	return NewZohoSender(ZohoConfig{
		ClientID:                cfg.Zoho.ClientID,
		ClientSecret:            cfg.Zoho.ClientSecret,
		RefreshToken:            cfg.Zoho.RefreshToken,
		TokenURL:                cfg.Zoho.TokenURL,
		APIBase:                 cfg.Zoho.APIBase,
		FromAddress:             cfg.SenderAddress,
		Timeout:                 cfg.Zoho.Timeout,
		LegacySilentSendFailure: cfg.Zoho.LegacySilentSendFailure,
	}, log)
}
