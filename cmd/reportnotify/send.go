package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	reportnotify "github.com/kart-io/reportnotify"
	"github.com/kart-io/reportnotify/pkg/queue"
	"github.com/kart-io/reportnotify/pkg/recipient"
	"github.com/kart-io/reportnotify/pkg/report"
)

type sendOptions struct {
	contentFile   string
	target        string
	recipientType string
	recipientJSON string
	enqueue       bool
}

func newSendCmd(root *rootOptions) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Deliver one report to a recipient",
		Long: `Deliver one report to a recipient.

The report is read as JSON from --content (or stdin when --content is "-").
The recipient is either a webhook URL given with --target or a raw recipient
configuration given with --type and --recipient-config.

Examples:
  reportnotify send --content report.json --target https://example.com/hook
  cat report.json | reportnotify send --content - --target https://example.com/hook
  reportnotify send --content report.json --target https://example.com/hook --enqueue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSend(cmd.Context(), root, opts, cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.contentFile, "content", "-", "report content JSON file, - for stdin")
	flags.StringVar(&opts.target, "target", "", "webhook URL")
	flags.StringVar(&opts.recipientType, "type", string(recipient.TypeWebhook), "recipient type")
	flags.StringVar(&opts.recipientJSON, "recipient-config", "", "raw recipient configuration JSON")
	flags.BoolVar(&opts.enqueue, "enqueue", false, "push the delivery onto the Redis queue instead of sending it")
	cmd.MarkFlagsMutuallyExclusive("target", "recipient-config")

	return cmd
}

func runSend(ctx context.Context, root *rootOptions, opts *sendOptions, cmd *cobra.Command) error {
	content, err := readContent(opts.contentFile)
	if err != nil {
		return err
	}

	rcpt, err := opts.recipient()
	if err != nil {
		return err
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.enqueue {
		log, err := cfg.BuildLogger()
		if err != nil {
			return err
		}
		source, err := queue.NewRedisSource(ctx, cfg.Redis, log)
		if err != nil {
			return err
		}
		defer source.Close()

		job := queue.NewJob(*content, rcpt)
		if err := source.Push(ctx, job); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "queued %s\n", job.ID)
		return nil
	}

	hub, err := reportnotify.New(cfg)
	if err != nil {
		return err
	}
	defer hub.Close(context.Background())

	result, err := hub.Send(ctx, content, rcpt)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "delivered %s (status %d, %s)\n",
		result.DeliveryID, result.StatusCode, result.Duration)
	return nil
}

func (o *sendOptions) recipient() (recipient.Recipient, error) {
	switch {
	case o.target != "":
		return recipient.Webhook(o.target), nil
	case o.recipientJSON != "":
		return recipient.New(recipient.Type(o.recipientType), o.recipientJSON), nil
	default:
		return recipient.Recipient{}, fmt.Errorf("either --target or --recipient-config is required")
	}
}

func readContent(path string) (*report.Content, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	var content report.Content
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	return &content, nil
}
