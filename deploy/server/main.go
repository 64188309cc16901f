// Package main line server main package
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	rest "github.com/forest33/sockserver/adapter/http"
	"github.com/forest33/sockserver/adapter/registry"
	"github.com/forest33/sockserver/adapter/server"
	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/business/usecase"
	"github.com/forest33/sockserver/pkg/automaxprocs"
	"github.com/forest33/sockserver/pkg/config"
	"github.com/forest33/sockserver/pkg/logger"
	"github.com/forest33/sockserver/pkg/metrics"
	"github.com/forest33/sockserver/pkg/profiler"
)

var (
	cfg        = &entity.ServerConfig{}
	cfgHandler *config.Config
	zlog       *logger.Logger
	ctx        context.Context
	cancel     context.CancelFunc

	registryAdapter entity.ClientRegistry
	serverAdapter   entity.NetworkServer
	restServer      *rest.Server

	serverUseCase *usecase.ServerUseCase
)

func init() {
	var err error
	cfgHandler, err = config.New(entity.DefaultServerConfigFileName, "", cfg)
	if err != nil {
		log.Fatalf("failed to parse config file: %v", err)
	}

	zlog = logger.New(logger.Config{
		Level:             cfg.Logger.Level,
		TimeFieldFormat:   cfg.Logger.TimeFieldFormat,
		PrettyPrint:       *cfg.Logger.PrettyPrint,
		DisableSampling:   *cfg.Logger.DisableSampling,
		RedirectStdLogger: *cfg.Logger.RedirectStdLogger,
		ErrorStack:        *cfg.Logger.ErrorStack,
		ShowCaller:        *cfg.Logger.ShowCaller,
		FileName:          cfg.Logger.FileName,
	})
	cfgHandler.SetLogger(zlog)

	automaxprocs.Init(zlog, cfg.Runtime.GoMaxProcs)

	ctx, cancel = context.WithCancel(context.Background())
}

func main() {
	port, ok := parseCommandLine()
	if !ok {
		return
	}

	metrics.Register()

	initAdapters()
	initUseCases()

	if *cfg.Profiler.Enabled {
		profiler.Start(&profiler.Config{
			Host: cfg.Profiler.Host,
			Port: cfg.Profiler.Port,
		}, zlog)
	}

	if err := serverUseCase.Start(port); err != nil {
		zlog.Fatalf("failed to start server: %v", err)
	}

	initRestServer()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var failed bool
	select {
	case sig := <-quit:
		zlog.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverUseCase.Errors():
		zlog.Error().Err(err).Msg("network server failed, shutting down")
		failed = true
	}

	shutdown()

	if failed {
		os.Exit(1)
	}
}

func initAdapters() {
	var err error

	registryAdapter = registry.New()

	serverAdapter, err = server.New(ctx, zlog, cfg.Network.Engine, server.NewConfig(cfg.Network))
	if err != nil {
		zlog.Fatalf("failed to create server: %v", err)
	}
}

func initUseCases() {
	var err error

	serverUseCase, err = usecase.NewServerUseCase(ctx, zlog, cfg, cfgHandler, serverAdapter, registryAdapter)
	if err != nil {
		zlog.Fatalf("failed to create server: %v", err)
	}
}

func initRestServer() {
	if !*cfg.Rest.Enabled {
		return
	}

	var err error
	restServer, err = rest.New(&rest.Config{
		Host: cfg.Rest.Host,
		Port: cfg.Rest.Port,
	}, zlog, serverUseCase)
	if err != nil {
		zlog.Fatalf("failed to start HTTP server: %v", err)
	}
	restServer.Start()
}

func shutdown() {
	sctx, scancel := shutdownContext(*cfg.Network.ShutdownTimeout)
	defer scancel()

	if err := serverUseCase.Stop(sctx); err != nil {
		zlog.Error().Err(err).Msg("failed to stop server")
	}
	if restServer != nil {
		if err := restServer.Stop(sctx); err != nil {
			zlog.Error().Err(err).Msg("failed to stop HTTP server")
		}
	}
	if err := profiler.Stop(sctx); err != nil {
		zlog.Error().Err(err).Msg("failed to stop profiler")
	}

	cfgHandler.Close()
	cancel()
}

func shutdownContext(timeout int) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
}
