// Package main provides the wallet binary: a command-line client for the
// stablecoin payment backend covering direct transfers and collaborative
// payment requests.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mzansipay/wallet/internal/apiclient"
	"github.com/mzansipay/wallet/internal/config"
	"github.com/mzansipay/wallet/internal/qr"
	"github.com/mzansipay/wallet/internal/request"
	"github.com/mzansipay/wallet/internal/request/rules"
	"github.com/mzansipay/wallet/internal/session"
	"github.com/mzansipay/wallet/internal/transfer"
	"github.com/mzansipay/wallet/internal/watch"
)

// app bundles the wired services for command handlers.
type app struct {
	cfg       *config.Config
	sess      session.Session
	requests  *request.Service
	transfers *transfer.Service
}

func newApp(userID, email string) *app {
	cfg := config.Load()
	if userID == "" {
		userID = cfg.UserID
	}
	if email == "" {
		email = cfg.UserEmail
	}

	backend := apiclient.New(cfg.BackendURL, cfg.AuthToken)
	ledgerAPI := apiclient.New(cfg.LedgerURL, cfg.AuthToken)
	transfers := transfer.NewService(ledgerAPI)

	return &app{
		cfg:       cfg,
		sess:      session.New(userID, email),
		requests:  request.NewService(backend, transfers),
		transfers: transfers,
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var userID, email string

	root := &cobra.Command{
		Use:           "wallet",
		Short:         "Stablecoin wallet client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&userID, "user", "", "acting user id (defaults to WALLET_USER_ID)")
	root.PersistentFlags().StringVar(&email, "email", "", "acting user email (defaults to WALLET_USER_EMAIL)")

	root.AddCommand(
		createCmd(&userID, &email),
		showCmd(&userID, &email),
		contributeCmd(&userID, &email),
		watchCmd(&userID, &email),
		historyCmd(&userID, &email),
		completeCmd(&userID, &email),
		sendCmd(&userID, &email),
		balanceCmd(&userID, &email),
		qrCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func createCmd(userID, email *string) *cobra.Command {
	var (
		amount       float64
		description  string
		recipient    string
		splitType    string
		participants int
		expiryHours  int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a collaborative payment request",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*userID, *email)
			form := &request.CreateForm{
				TotalAmount:     amount,
				Description:     description,
				RecipientEmail:  recipient,
				SplitType:       rules.SplitType(splitType),
				MaxParticipants: participants,
				ExpiryDate:      time.Now().Add(time.Duration(expiryHours) * time.Hour),
			}
			created, err := a.requests.Create(cmd.Context(), a.sess, form)
			if err != nil {
				return err
			}
			printJSON(created)
			fmt.Println("Share link:", qr.ShareLink(a.cfg.BackendURL, created.ID))
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "target amount")
	cmd.Flags().StringVar(&description, "description", "", "what the money is for")
	cmd.Flags().StringVar(&recipient, "recipient", "", "recipient payment identifier (email)")
	cmd.Flags().StringVar(&splitType, "split", string(rules.SplitTypeOpen), "split type: OPEN or EQUAL")
	cmd.Flags().IntVar(&participants, "participants", 0, "participant count (EQUAL splits)")
	cmd.Flags().IntVar(&expiryHours, "expires-hours", 24, "hours until the request expires")
	return cmd
}

func showCmd(userID, email *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <request-id>",
		Short: "Show a payment request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*userID, *email)
			req, err := a.requests.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printJSON(req)
			fmt.Printf("Progress: %.1f%%\n", req.Progress())
			return nil
		},
	}
}

func contributeCmd(userID, email *string) *cobra.Command {
	var (
		amount float64
		notes  string
	)
	cmd := &cobra.Command{
		Use:   "contribute <request-id>",
		Short: "Contribute to a payment request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*userID, *email)
			updated, err := a.requests.Contribute(cmd.Context(), a.sess, args[0], amount, notes)
			if err != nil {
				return err
			}
			printJSON(updated)
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "contribution amount")
	cmd.Flags().StringVar(&notes, "notes", "", "optional note")
	return cmd
}

func watchCmd(userID, email *string) *cobra.Command {
	var (
		intervalMs  int
		maxFailures int
	)
	cmd := &cobra.Command{
		Use:   "watch <request-id>",
		Short: "Poll a request until it completes or expires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*userID, *email)

			interval := a.cfg.PollInterval
			if intervalMs > 0 {
				interval = time.Duration(intervalMs) * time.Millisecond
			}
			watcher := watch.New(a.requests, watch.Options{Interval: interval, MaxFailures: maxFailures})

			done := make(chan struct{})
			stop := watcher.Watch(cmd.Context(), args[0], func(req *request.PaymentRequest, err error) {
				if err != nil {
					log.Printf("refresh failed: %v", err)
					return
				}
				fmt.Printf("[%s] %s paid %.2f of %.2f (%.1f%%)\n",
					time.Now().Format("15:04:05"), req.Status, req.AmountPaid, req.TotalAmount, req.Progress())
				if req.Status.Terminal() {
					close(done)
				}
			})
			defer stop()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			select {
			case <-done:
			case <-sig:
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&intervalMs, "interval-ms", 0, "polling interval in milliseconds")
	cmd.Flags().IntVar(&maxFailures, "max-failures", 0, "stop after N consecutive failures (0 = never)")
	return cmd
}

func historyCmd(userID, email *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List requests you created and contributed to",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*userID, *email)
			if err := a.sess.Validate(); err != nil {
				return err
			}

			h := a.requests.History(cmd.Context(), a.sess.UserID)
			if h.CreatedErr != nil {
				log.Printf("could not load created requests: %v", h.CreatedErr)
			} else {
				fmt.Printf("Created (%d):\n", len(h.Created))
				printJSON(h.Created)
			}
			if h.ContributedErr != nil {
				log.Printf("could not load contributions: %v", h.ContributedErr)
			} else {
				fmt.Printf("Contributed (%d):\n", len(h.Contributed))
				printJSON(h.Contributed)
			}
			return nil
		},
	}
}

func completeCmd(userID, email *string) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <request-id>",
		Short: "Mark a request as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*userID, *email)
			if err := a.requests.Complete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Request completed")
			return nil
		},
	}
}

func sendCmd(userID, email *string) *cobra.Command {
	var (
		to     string
		amount float64
		notes  string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a direct transfer",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*userID, *email)
			rec, err := a.transfers.ResolveRecipient(cmd.Context(), to)
			if err != nil {
				return err
			}
			result, err := a.transfers.Send(cmd.Context(), a.sess, rec.ID, amount, notes)
			if err != nil {
				return err
			}
			fmt.Printf("Sent %.2f %s to %s (tx %s)\n", amount, transfer.DefaultCurrency, rec.PaymentIdentifier, result.TransactionID)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient payment identifier (email)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount to send")
	cmd.Flags().StringVar(&notes, "notes", "", "optional note")
	return cmd
}

func balanceCmd(userID, email *string) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show your token balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(*userID, *email)
			if err := a.sess.Validate(); err != nil {
				return err
			}
			bal, err := a.transfers.Balance(cmd.Context(), a.sess.UserID)
			if err != nil {
				return err
			}
			for _, t := range bal.Tokens {
				fmt.Printf("%s: %s\n", t.Name, t.Balance)
			}
			return nil
		},
	}
}

func qrCmd() *cobra.Command {
	var origin string
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Work with shareable request links",
	}

	encode := &cobra.Command{
		Use:   "encode <request-id>",
		Short: "Build a share link for a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(qr.ShareLink(origin, args[0]))
			return nil
		},
	}
	encode.Flags().StringVar(&origin, "origin", "https://wallet.example.com", "link origin")

	decode := &cobra.Command{
		Use:   "decode <url>",
		Short: "Decode a share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := qr.ParseShareLink(args[0])
			if err != nil {
				return err
			}
			printJSON(payload)
			return nil
		},
	}

	cmd.AddCommand(encode, decode)
	return cmd
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("failed to render output: %v", err)
		return
	}
	fmt.Println(string(out))
}
