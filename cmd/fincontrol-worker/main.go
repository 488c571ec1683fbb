package main

import (
	"context"
	"os"

	"fincontrol/internal/amqp"
	"fincontrol/internal/backend"
	"fincontrol/internal/cli"
	"fincontrol/internal/config"
	"fincontrol/internal/log"
	"fincontrol/internal/services"
	"fincontrol/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(config.Load(), log.ComponentWorker)
	cfg := cli.LoadAndValidateWorkerConfig(logger.Logger)

	logger.Info("Starting fincontrol-worker",
		log.FieldOperation, log.OpStartup,
		log.FieldBackend, cfg.DataBackend,
		"mirror", cfg.MirrorBackend,
		"reconcile_interval", cfg.ReconcileInterval)

	ctx := context.Background()
	backendLogger := logger.WithComponent(log.ComponentBackend).Logger

	primaryCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid data backend configuration", "error", err)
		os.Exit(1)
	}
	mirrorCfg, err := backend.MirrorFromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid mirror backend configuration", "error", err)
		os.Exit(1)
	}
	primary := cli.OpenBackend(ctx, backendLogger, primaryCfg)
	defer primary.Close()
	mirror := cli.OpenBackend(ctx, backendLogger, mirrorCfg)
	defer mirror.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP).Logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reconciler := services.NewReconcileProcessor(primary.Backend, mirror.Backend,
		services.ReconcileConfig{Interval: cfg.ReconcileInterval}, logger.Logger)
	mirrorWorker := worker.NewMirrorWorker(mirror.Backend, logger.Logger)

	runCtx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, nil)

	if err := mirrorWorker.Run(runCtx, amqpClient, reconciler); err != nil {
		logger.Error("Mirror worker stopped", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Worker stopped gracefully")
}
