package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/petcare-portal/internal/app/api"
	cartactivities "github.com/Apurer/petcare-portal/internal/platform/temporal/activities/cart"
	checkoutworkflows "github.com/Apurer/petcare-portal/internal/platform/temporal/workflows/checkout"
)

func main() {
	ctx := context.Background()
	const serviceName = "petcare-portal-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	instruments, shutdown, err := api.InitObservability(ctx, cfg, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backend, err := api.NewBackendClient(cfg)
	if err != nil {
		logger.Error("failed to build pet-care client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.PostgresDSN == "" {
		logger.Warn("worker cart storage is in-memory; carts cleared here are not the API's carts")
	}
	cartService, cleanupCart := api.BuildCartService(ctx, cfg, instruments, backend)
	defer cleanupCart()
	activities := cartactivities.NewActivities(cartService)

	temporalClient, err := api.DialTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, checkoutworkflows.CheckoutTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(checkoutworkflows.CheckoutWorkflow, workflow.RegisterOptions{Name: checkoutworkflows.CheckoutWorkflowName})
	w.RegisterActivityWithOptions(activities.SubmitCheckout, activity.RegisterOptions{Name: cartactivities.SubmitCheckoutActivityName})
	w.RegisterActivityWithOptions(activities.ClearCart, activity.RegisterOptions{Name: cartactivities.ClearCartActivityName})

	logger.Info("worker listening", slog.String("taskQueue", checkoutworkflows.CheckoutTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
