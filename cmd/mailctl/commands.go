package main

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bristoevents/eventmail/internal/config"
	"github.com/bristoevents/eventmail/internal/email"
	"github.com/bristoevents/eventmail/internal/logger"
	"github.com/bristoevents/eventmail/internal/model"
)

const commandTimeout = 30 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mailctl",
		Short:         "Operator tool for the eventmail relay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newCheckCmd())
	root.AddCommand(newSendCmd())
	root.AddCommand(newBookingIDCmd())

	return root
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and mail provider credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "provider: %s\n", cfg.Mail.Provider)
			fmt.Fprintf(out, "business inbox: %s\n", cfg.Business.Email)
			fmt.Fprintf(out, "sender: %s\n", cfg.Mail.SenderAddress)

			switch cfg.Mail.Provider {
			case config.ProviderSMTP:
				smtp, err := email.NewSMTPFromConfig(cfg.Mail)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "smtp relay: %s:%d\n", smtp.Host(), cfg.Mail.SMTP.Port)
			case config.ProviderZoho:
				zoho, err := email.NewZohoFromConfig(cfg.Mail, log)
				if err != nil {
					return err
				}

				ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
				defer cancel()

				accountID, err := zoho.DiscoverAccount(ctx)
				if err != nil {
					return fmt.Errorf("zoho check failed: %w", err)
				}
				fmt.Fprintf(out, "zoho account: %s\n", accountID)
			}

			fmt.Fprintln(out, "configuration ok")
			return nil
		},
	}
}

func newSendCmd() *cobra.Command {
	var to, subject, body string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one test message through the configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			sender, err := email.NewFromConfig(ctx, cfg.Mail, log)
			if err != nil {
				return err
			}

			msg := email.Message{
				To:       to,
				Subject:  subject,
				TextBody: body,
				HTMLBody: "<p>" + html.EscapeString(body) + "</p>",
			}
			if err := sender.Send(ctx, msg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "sent to %s via %s\n", to, cfg.Mail.Provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	cmd.Flags().StringVar(&subject, "subject", "eventmail test message", "message subject")
	cmd.Flags().StringVar(&body, "body", "This is a test message from mailctl.", "message body")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newBookingIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "booking-id [ID]",
		Short: "Print a new booking id, or check the format of an existing one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, model.NewBookingID())
				return nil
			}

			id := strings.ToUpper(strings.TrimSpace(args[0]))
			if !model.IsBookingID(id) {
				return fmt.Errorf("%q is not a booking id (want %s followed by 8 characters of 0-9A-Z)", args[0], model.BookingIDPrefix)
			}
			fmt.Fprintf(out, "%s is a valid booking id\n", id)
			return nil
		},
	}
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger.New(cfg.Log.Level, "console"), nil
}
