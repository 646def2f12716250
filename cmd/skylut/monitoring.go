package main

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/profiler"
	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudmetrics "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	monitoring           bool
	monitoringProject    string
	monitoringTraceRatio float64
	enableMetrics        bool
	enableProfiling      bool
)

func init() {
	cmdRoot.PersistentFlags().BoolVar(&monitoring, "monitoring", false, "Export traces and OpenTelemetry metrics to Google Cloud?")
	cmdRoot.PersistentFlags().StringVar(&monitoringProject, "monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	cmdRoot.PersistentFlags().Float64Var(&monitoringTraceRatio, "monitoring-trace-ratio", 1.0, "What ratio of traces should be exported?")
	cmdRoot.PersistentFlags().BoolVar(&enableMetrics, "enable-metrics", false, "Export build metrics to Stackdriver?")
	cmdRoot.PersistentFlags().BoolVar(&enableProfiling, "enable-profiling", false, "Enable the Cloud Profiler agent?")
}

// setupMonitoring installs whichever exporters the flags ask for.  The
// returned function flushes and stops them.
func setupMonitoring(ctx context.Context) (func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if enableProfiling {
		if err := profiler.Start(profiler.Config{
			Service:        "skylut",
			ServiceVersion: "0.0.1",
			ProjectID:      monitoringProject,
		}); err != nil {
			return cleanup, fmt.Errorf("while initializing profiler: %w", err)
		}
	}

	if monitoring {
		metricsOpts := []cloudmetrics.Option{}
		traceOpts := []cloudtrace.Option{}
		if monitoringProject != "" {
			metricsOpts = append(metricsOpts, cloudmetrics.WithProjectID(monitoringProject))
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(monitoringProject))
		}

		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(monitoringTraceRatio)))
		if err != nil {
			return cleanup, fmt.Errorf("while installing Cloud Trace OpenTelemetry trace pipeline: %w", err)
		}
		cleanups = append(cleanups, traceShutdown)

		pusher, err := cloudmetrics.InstallNewPipeline(metricsOpts)
		if err != nil {
			return cleanup, fmt.Errorf("while installing Cloud Metrics OpenTelemetry meter pipeline: %w", err)
		}
		cleanups = append(cleanups, func() {
			if err := pusher.Stop(ctx); err != nil {
				glog.Warningf("Failed to stop metrics pusher: %v", err)
			}
		})
	}

	if enableMetrics {
		exporter, err := stackdriver.NewExporter(stackdriver.Options{
			ProjectID:         monitoringProject,
			MetricPrefix:      "skylut",
			ReportingInterval: 60 * time.Second,
		})
		if err != nil {
			return cleanup, fmt.Errorf("while initializing Stackdriver exporter: %w", err)
		}
		if err := exporter.StartMetricsExporter(); err != nil {
			return cleanup, fmt.Errorf("while starting Stackdriver metrics exporter: %w", err)
		}
		cleanups = append(cleanups, func() {
			exporter.StopMetricsExporter()
			exporter.Flush()
		})
	}

	return cleanup, nil
}
