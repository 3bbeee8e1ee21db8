package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-broker/broker"
	"github.com/jrsteele09/go-auth-broker/coordinator"
	"github.com/jrsteele09/go-auth-broker/events"
	"github.com/jrsteele09/go-auth-broker/internal/config"
	"github.com/jrsteele09/go-auth-broker/providers"
	"github.com/jrsteele09/go-auth-broker/providers/devkit"
	"github.com/jrsteele09/go-auth-broker/server"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running broker")
	}
	log.Info().Msg("broker stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	remote, err := coordinator.NewClient(c.GetCoordinatorURL())
	if err != nil {
		return errors.Wrap(err, "coordinator.NewClient")
	}

	bus := events.NewBus()
	registry, err := providers.NewRegistry(remote, bus, log.Logger)
	if err != nil {
		return errors.Wrap(err, "providers.NewRegistry")
	}
	b, err := broker.New(registry, remote, bus, log.Logger)
	if err != nil {
		return errors.Wrap(err, "broker.New")
	}

	bus.SubscribeSessionsChanged(func(e events.SessionsChanged) {
		log.Debug().Str("provider_id", e.ProviderID).Msg("session list changed")
	})
	bus.SubscribeProvidersChanged(func(e events.ProvidersChanged) {
		log.Debug().Strs("added", e.Added).Strs("removed", e.Removed).Msg("provider list changed")
	})

	if c.GetEnv() == "DEV" {
		registerDevProvider(registry)
	}

	srv, err := server.New(c, broker.NewInbound(b), registry)
	if err != nil {
		return errors.Wrap(err, "server.New")
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// registerDevProvider adds the in-memory devkit provider so the broker has
// something to serve before any real provider registers. Failure is not
// fatal: the coordinator may simply not be up yet.
func registerDevProvider(registry *providers.Registry) {
	provider, err := devkit.New("devkit", "Devkit")
	if err != nil {
		log.Warn().Err(err).Msg("failed to build devkit provider")
		return
	}
	if _, err := registry.Register(context.Background(), provider); err != nil {
		log.Warn().Err(err).Msg("failed to register devkit provider")
	}
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("broker listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
