package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lightninglabs/lndclient"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/sebdeveloper6952/gojobs/config"
	"github.com/sebdeveloper6952/gojobs/engine"
	"github.com/sebdeveloper6952/gojobs/journal"
	"github.com/sebdeveloper6952/gojobs/lightning"
	"github.com/sebdeveloper6952/gojobs/lightning/lnbits"
	"github.com/sebdeveloper6952/gojobs/lightning/lnd"
	"github.com/sebdeveloper6952/gojobs/nostr"
)

func main() {
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: false,
		FullTimestamp: true,
	})

	cfg, err := config.Load(os.Getenv(config.EnvConfigPath))
	if err != nil {
		logger.Fatal(err)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal(err)
	}
	logger.SetLevel(level)

	e, err := engine.New(cfg, logger, clock.NewDefaultClock())
	if err != nil {
		logger.Fatal(err)
	}

	j, err := journal.Open(cfg.JournalPath, logger)
	if err != nil {
		logger.Fatal(err)
	}
	defer j.Close()
	e.SetJournal(j)

	lnSvc, err := newLightning(cfg, logger)
	if err != nil {
		logger.Fatal(err)
	}
	if lnSvc != nil {
		e.SetLnService(lnSvc)
	}

	nostrSvc, err := nostr.NewNostr(logger)
	if err != nil {
		logger.Fatal(err)
	}
	e.SetNostrService(nostrSvc)

	reg := prometheus.NewRegistry()
	metrics, err := engine.NewMetrics(reg)
	if err != nil {
		logger.Fatal(err)
	}
	e.SetMetrics(metrics)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("[metrics] %+v", err)
		}
	}()

	if err := e.Run(ctx); err != nil {
		logger.Fatal(err)
	}

	logger.Infof("running as %s", e.Pk())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	cancelCtx()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("[metrics] shutdown %+v", err)
	}
	logger.Info("bye")
}

func newLightning(cfg *config.Config, logger logrus.FieldLogger) (lightning.Service, error) {
	ln := cfg.Lightning
	switch ln.Backend {
	case "lnd":
		tlsBytes, err := os.ReadFile(ln.TLSPath)
		if err != nil {
			return nil, err
		}
		return lnd.New(
			ln.Addr,
			ln.GRPCPort,
			ln.MacaroonHex,
			string(tlsBytes),
			lndclient.Network(ln.Network),
			logger,
		)
	case "lnbits":
		return lnbits.New(ln.LNbitsURL, ln.LNbitsKey, logger)
	}
	return nil, nil
}
