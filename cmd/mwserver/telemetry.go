package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"marketwatch-backend/internal/components/telemetry"
	"marketwatch-backend/lib/serviceutil"

	"github.com/prometheus/client_golang/prometheus"
)

// InitTelemetry returns an API that logs through slog and counts reports
// in the default prometheus registry.
func InitTelemetry(ctx context.Context, verbose bool) telemetry.API {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	otel, err := telemetry.SetupFromEnv(ctx, "mwserver")
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Info("no telemetry.json5 found, traces and metrics will not be exported")
	case err != nil:
		serviceutil.Fatal("setup telemetry", err)
	default:
		go func() {
			<-ctx.Done()
			otel.Shutdown(context.Background())
		}()
	}
	telemetry.InstrumentPerfStats(ctx)

	prom, err := telemetry.NewPromAPI(prometheus.DefaultRegisterer, "marketwatch")
	if err != nil {
		serviceutil.Fatal("register telemetry metrics", err)
	}
	return telemetry.MultiAPI{telemetry.SlogAPI{}, prom}
}

func restyOutput(verbose bool) telemetry.Output {
	if !verbose {
		return nil
	}
	out, err := telemetry.NewFilesystemOutput(".dev/resty/marketwatch")
	if err != nil {
		slog.Warn("http exchanges will not be written", "err", err)
		return nil
	}
	return out
}
