/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/forumhub/apiserver/internal/mq"
	"github.com/forumhub/apiserver/internal/services"
	"github.com/spf13/cobra"
)

var eventsChannel string

// eventsCmd tails moderation or membership events from the broker.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Subscribe to forum events and log them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer func() {
			_ = broker.Close()
		}()

		log.Info(ctx, "subscribed", "channel", eventsChannel)
		err = broker.Subscribe(ctx, eventsChannel, func(ctx context.Context, msg mq.Message) error {
			log.Info(ctx, "event", "id", msg.ID, "type", msg.Attributes["type"], "payload", string(msg.Data))
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().StringVar(&eventsChannel, "channel", services.ModerationChannel, "channel to subscribe to")
}
