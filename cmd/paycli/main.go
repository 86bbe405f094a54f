package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitat_payments/internal/adapter/client"
	"habitat_payments/internal/domain/entities"
	"habitat_payments/internal/infrastructure/metrics"
	"habitat_payments/internal/session"
	"habitat_payments/pkg/logger"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	exitOK = iota
	exitPaymentFailed
	exitUsage
	exitInterrupted = 130
)

type options struct {
	apiURL       string
	payerID      string
	payerPhone   string
	purpose      string
	relatedID    string
	amount       int64
	channel      string
	form         session.Form
	retries      int
	pollInterval time.Duration
	extendedWait time.Duration
	metricsAddr  string
	supportPhone string
	logLevel     string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitUsage
	}

	logg := logger.New(logger.Options{
		ServiceName: "paycli",
		Level:       logger.ParseLevel(opts.logLevel),
		Format:      "console",
		Output:      stderr,
	})

	backend, err := client.NewPaymentsClient(opts.apiURL)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	params := session.Params{
		Backend:           backend,
		Payer:             session.Payer{ID: opts.payerID, Phone: opts.payerPhone},
		Purpose:           entities.Purpose(opts.purpose),
		RelatedID:         opts.relatedID,
		Amount:            opts.amount,
		PollInterval:      opts.pollInterval,
		ExtendedWaitAfter: opts.extendedWait,
		Logger:            logg,
		OnTransition:      printer{out: stdout, launcher: consoleLauncher{out: stdout}}.onTransition,
	}
	if opts.metricsAddr != "" {
		params.Metrics = serveMetrics(opts.metricsAddr, logg)
	}

	s, err := session.New(params)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer s.Close()

	if err := s.SelectChannel(entities.Channel(opts.channel)); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	form := opts.form
	form.Channel = entities.Channel(opts.channel)
	if form.Phone == "" {
		form.Phone = s.Snapshot().Form.Phone
	}
	if err := s.SetForm(form); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	if err := s.Submit(); err != nil {
		var fieldErrs session.FieldErrors
		if errors.As(err, &fieldErrs) {
			printFieldErrors(stderr, fieldErrs)
			return exitUsage
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	return waitForOutcome(s, opts.retries, opts.supportPhone, stdout, stderr)
}

type outcome struct {
	snap session.Snapshot
	err  error
}

// waitForOutcome blocks until the session settles. Interrupts cancel the
// session unless it refuses to be dismissed.
func waitForOutcome(s *session.Session, retries int, supportPhone string, stdout, stderr io.Writer) int {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	for {
		done := make(chan outcome, 1)
		go func() {
			snap, err := s.Wait(context.Background())
			done <- outcome{snap: snap, err: err}
		}()

		var res outcome
	waiting:
		for {
			select {
			case res = <-done:
				break waiting
			case <-sigs:
				if err := s.Cancel(); errors.Is(err, session.ErrDismissBlocked) {
					fmt.Fprintln(stderr, session.DismissBlockedMessage)
					continue
				}
				fmt.Fprintln(stderr, "payment cancelled")
				s.Close()
				return exitInterrupted
			}
		}

		if res.err != nil {
			fmt.Fprintln(stderr, res.err)
			return exitInterrupted
		}
		switch res.snap.State {
		case session.StateSucceeded:
			fmt.Fprintf(stdout, "payment %s succeeded\n", res.snap.IntentID)
			return exitOK
		case session.StateFailed:
			if retries > 0 {
				retries--
				fmt.Fprintln(stdout, "retrying payment")
				if err := s.Retry(); err != nil {
					fmt.Fprintln(stderr, err)
					return exitPaymentFailed
				}
				continue
			}
		}
		fmt.Fprintf(stdout, "payment not completed: %s\n", res.snap.FailureReason)
		if uri := session.SupportURI(supportPhone, res.snap.IntentID); uri != "" {
			fmt.Fprintf(stdout, "contact support: %s\n", uri)
		}
		return exitPaymentFailed
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("paycli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.apiURL, "api", envOr("PAYMENTS_API_URL", "http://localhost:8080/v1"), "payments API base URL")
	fs.StringVar(&o.payerID, "payer", "", "payer id")
	fs.StringVar(&o.payerPhone, "payer-phone", "", "payer profile phone, used to prefill mobile money")
	fs.StringVar(&o.purpose, "purpose", string(entities.PurposeVisit), "visit | booking | booking_remaining")
	fs.StringVar(&o.relatedID, "related", "", "visit or booking id")
	fs.Int64Var(&o.amount, "amount", 0, "amount in XAF")
	fs.StringVar(&o.channel, "channel", string(entities.ChannelMTNMoMo), "mobile-money-orange | mobile-money-mtn | card")
	fs.StringVar(&o.form.Phone, "phone", "", "mobile money phone number")
	fs.StringVar(&o.form.CardNumber, "card-number", "", "card number")
	fs.StringVar(&o.form.CardHolder, "card-holder", "", "card holder name")
	fs.StringVar(&o.form.CardExpiry, "card-expiry", "", "card expiry MM/YY")
	fs.StringVar(&o.form.CardCVV, "card-cvv", "", "card CVV")
	fs.BoolVar(&o.form.AcceptedPolicy, "accept-policy", false, "accept the payment policy")
	fs.IntVar(&o.retries, "retries", 0, "retries after a failed payment")
	fs.DurationVar(&o.pollInterval, "poll", session.DefaultPollInterval, "status poll interval")
	fs.DurationVar(&o.extendedWait, "extended-after", session.DefaultExtendedWaitAfter, "show the extended wait notice after this long")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "serve session metrics on this address, e.g. :9102")
	fs.StringVar(&o.supportPhone, "support-phone", envOr("PAYMENTS_SUPPORT_PHONE", ""), "WhatsApp support number shown when a payment fails")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func serveMetrics(addr string, logg *logger.Logger) *metrics.PaymentMetrics {
	reg := prometheus.NewRegistry()
	m := metrics.NewPaymentMetrics(reg)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(context.Background(), "metrics server stopped", err)
		}
	}()
	return m
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
