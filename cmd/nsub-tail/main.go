// Command nsub-tail subscribes to a subject and prints every message it receives.
// Requests are answered with a google.rpc.Status payload. On SIGINT/SIGTERM the
// subscription is drained, printing what is still buffered, before exiting.
//
// Configuration comes from ./nsub.yaml or NSUB_* environment variables, e.g.
//
//	NSUB_SUBSCRIPTION_SUBJECT=orders.> NSUB_METRICS_ADDR=:9090 nsub-tail
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tehsphinx/nsub"
	"github.com/tehsphinx/nsub/config"
	"github.com/tehsphinx/nsub/metrics"
	"github.com/tehsphinx/nsub/pubsub"
	natspubsub "github.com/tehsphinx/nsub/pubsub/nats"
	"github.com/tehsphinx/nsub/rpc"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "nsub-tail:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgMgr := config.NewManager()
	if err := cfgMgr.Load(); err != nil {
		return err
	}
	cfg, err := cfgMgr.GetConfig()
	if err != nil {
		return err
	}
	if r := cfg.Validate(); r != nil {
		return r
	}

	zl, err := newZap(cfg.Logger.Dev)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	log := nsub.NewZapLogger(zl)

	nc, err := nats.Connect(cfg.NATS.URL,
		nats.Name(cfg.NATS.Name),
		nats.Timeout(cfg.NATS.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer nc.Close()

	collector := metrics.New(cfg.Metrics.Namespace)
	conn := natspubsub.New(nc,
		natspubsub.WithLogger(log),
		natspubsub.WithSlowConsumerObserver(collector),
	)

	sub, err := conn.Subscribe(cfg.Subscription.Subject, cfg.Subscription.Queue, cfg.SubscriptionOptions()...)
	if err != nil {
		return err
	}
	collector.Track(sub)
	if cfg.Subscription.MaxMsgs > 0 {
		if r := sub.AutoUnsubscribe(cfg.Subscription.MaxMsgs); r != nil {
			return r
		}
	}

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, collector, log)
		defer func() { _ = srv.Close() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pub := natspubsub.Publisher(nc)
	tail(ctx, sub, pub, log)

	if sub.IsValid() {
		drain(sub, pub, cfg.Subscription.DrainTimeout, log)
	}

	st := sub.Stats()
	log.Infof("done: subject => %s, delivered => %d, dropped => %d, max pending => %d msgs / %d bytes",
		st.Subject, st.Delivered, st.Dropped, st.MaxPendingMsgs, st.MaxPendingBytes)
	return nil
}

// tail prints messages until ctx is cancelled or the subscription ends. Messages
// carrying a reply subject are answered with the outcome of printing them.
func tail(ctx context.Context, sub *nsub.Subscription, pub pubsub.Publisher, log nsub.Logger) {
	for {
		m, err := sub.NextMsgContext(ctx)
		switch {
		case err == nil:
			_, err = fmt.Fprintf(os.Stdout, "[%s] %s\n", m.Subject, m.Data)
			if r := rpc.Reply(pub, m, err); r != nil {
				log.Errorf("reply to %s failed: %v", m.Reply, r)
			}
		case errors.Is(err, context.Canceled):
			return
		default:
			log.Infof("subscription ended: %v", err)
			return
		}
	}
}

// drain stops new deliveries and keeps printing until the buffered messages are
// consumed and the subscription is closed.
func drain(sub *nsub.Subscription, pub pubsub.Publisher, timeout time.Duration, log nsub.Logger) {
	ch, err := sub.DrainAsync(timeout)
	if err != nil {
		log.Errorf("drain failed: %v", err)
		return
	}

	tail(context.Background(), sub, pub, log)

	if r := <-ch; r != nil {
		log.Errorf("drain failed: %v", r)
	}
}

func newZap(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func serveMetrics(addr string, collector prometheus.Collector, log nsub.Logger) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collector)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()
	return srv
}
