/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/finacore/apiserver/config"
	"github.com/finacore/apiserver/internal/logger"
	"github.com/finacore/apiserver/internal/mailer"
	"github.com/finacore/apiserver/internal/mq"
	"github.com/spf13/cobra"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Runs the outbound email worker",
	Long: `Runs the outbound email worker. Consumes email jobs from the
configured queue backend and delivers them over SMTP. Usage:

	finacore worker
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()
		log := logger.New("worker")

		queue, err := mq.New(cmd.Context(), cfg.Queue)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect queue: %v\n", err)
			os.Exit(1)
		}
		if queue == nil {
			fmt.Fprintln(os.Stderr, "QUEUE_BACKEND is required for the worker")
			os.Exit(1)
		}
		defer func() {
			_ = queue.Close()
		}()

		smtpMailer := mailer.NewSMTPMailer(cfg.SMTP, cfg.FrontendURL)
		log.Info().Str("channel", cfg.Queue.Channel).Msg("email worker started")

		err = queue.Consume(cmd.Context(), mailer.JobHandler(smtpMailer, log))
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "worker error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
