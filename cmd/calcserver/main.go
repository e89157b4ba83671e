// Package main provides the calculator server. It serves the interactive
// Telnet calculator and the Calculator gRPC service from one process.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/combicalc/internal/config"
	"github.com/cory-johannsen/combicalc/internal/formula"
	"github.com/cory-johannsen/combicalc/internal/frontend/handlers"
	"github.com/cory-johannsen/combicalc/internal/frontend/telnet"
	"github.com/cory-johannsen/combicalc/internal/i18n"
	"github.com/cory-johannsen/combicalc/internal/observability"
	"github.com/cory-johannsen/combicalc/internal/rpcserver"
	"github.com/cory-johannsen/combicalc/internal/scripting"
	"github.com/cory-johannsen/combicalc/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	noScripts := flag.Bool("no-scripts", false, "disable the Telnet eval command")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		logger.Fatal("loading message catalogs", zap.Error(err))
	}
	if !bundle.HasLocale(cfg.Calculator.Locale) {
		logger.Warn("configured locale has no catalog; falling back",
			zap.String("locale", cfg.Calculator.Locale),
			zap.String("fallback", i18n.BaseLocale),
		)
	}

	registry := formula.DefaultRegistry()
	evaluator := formula.NewEvaluator(registry, formula.Limits{MaxOperand: cfg.Calculator.MaxOperand}, logger.Named("formula"))
	logger.Info("formula catalog loaded",
		zap.Int("formulas", len(registry.Formulas())),
		zap.Strings("locales", bundle.Locales()),
	)

	lifecycle := server.NewLifecycle(logger)

	if cfg.Telnet.Enabled {
		var scripts handlers.ScriptEvaluator
		if !*noScripts {
			scripts = scripting.NewEngine(evaluator, cfg.Scripting.InstructionLimit, logger.Named("lua"))
		}
		calculator := handlers.NewCalculatorHandler(evaluator, scripts, bundle, cfg.Calculator, logger.Named("session"))
		telnetAcceptor := telnet.NewAcceptor(cfg.Telnet, calculator, logger.Named("telnet"))

		lifecycle.Add("telnet", &server.FuncService{
			StartFn: func() error {
				return telnetAcceptor.ListenAndServe()
			},
			StopFn: func() {
				telnetAcceptor.Stop()
			},
		})
	}

	if cfg.GRPC.Enabled {
		svc := rpcserver.NewCalculatorService(evaluator, bundle, cfg.Calculator, logger.Named("rpc"))
		grpcServer := rpcserver.NewServer(svc, logger.Named("rpc"))

		lifecycle.Add("grpc", &server.FuncService{
			StartFn: func() error {
				lis, err := net.Listen("tcp", cfg.GRPC.Addr())
				if err != nil {
					return fmt.Errorf("listening on %s: %w", cfg.GRPC.Addr(), err)
				}
				logger.Info("gRPC server listening",
					zap.String("addr", lis.Addr().String()),
				)
				return grpcServer.Serve(lis)
			},
			StopFn: func() {
				grpcServer.GracefulStop()
			},
		})
	}

	logger.Info("calculator server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Bool("telnet", cfg.Telnet.Enabled),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Bool("grpc", cfg.GRPC.Enabled),
		zap.String("grpc_addr", cfg.GRPC.Addr()),
		zap.String("locale", cfg.Calculator.Locale),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
