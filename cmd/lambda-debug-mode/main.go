package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/khiem5555/localstack/debugconfig"
	"github.com/khiem5555/localstack/internal/logging"
	"github.com/khiem5555/localstack/session"
	"github.com/khiem5555/localstack/telemetry"
)

func main() {
	cfgPath := flag.String("config", "lambda-debug-mode.yaml", "Path to the debug mode configuration file")
	check := flag.Bool("check", false, "Validate the configuration and exit")
	watch := flag.Bool("watch", false, "Keep running and reload the configuration on change")
	pollInterval := flag.Duration("poll-interval", time.Second, "How often to check the configuration file for changes")
	metricsListen := flag.String("metrics-listen", "", "Expose Prometheus metrics on this address while watching")
	logLevel := flag.String("log-level", "info", "Log level")
	logFormat := flag.String("log-format", "text", "Log format (text or json)")
	lokiURL := flag.String("loki-url", "", "Forward diagnostics to this Loki push endpoint")
	lokiLabels := flag.String("loki-labels", "", "Comma-separated key=value labels for Loki log streams")
	flag.Parse()

	if *check {
		os.Exit(executeCheck(*cfgPath))
	}

	logCfg := logging.Config{Level: *logLevel, Format: *logFormat}
	if *lokiURL != "" {
		logCfg.Loki = logging.LokiConfig{
			Enabled: true,
			URL:     *lokiURL,
			Labels:  parseLabels(*lokiLabels),
		}
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup logger")
	}
	defer cleanup()
	log.Logger = logger

	collector := telemetry.Noop()
	if *metricsListen != "" {
		prom, err := telemetry.NewPrometheusCollector(nil)
		if err != nil {
			logger.Error().Err(err).Msg("telemetry disabled")
		} else {
			collector = prom
			go serveMetrics(*metricsListen)
		}
	}

	sess := session.New(*cfgPath, logger,
		session.WithCollector(collector),
		session.WithPollInterval(*pollInterval),
	)
	sess.Load()

	if !*watch {
		if !sess.Enabled() {
			fmt.Println("No debug mode configuration active.")
			return
		}
		printConfig(sess.Active())
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := sess.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("session stopped with error")
	}
}

func executeCheck(path string) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read %s: %v\n", path, err)
		return 1
	}

	// The loader reports every failure through its logger, so a flagging
	// writer distinguishes a rejected document from an intentionally empty
	// one.
	sink := &flagWriter{out: os.Stderr}
	cfg := debugconfig.Load(string(raw), zerolog.New(sink))
	if cfg == nil {
		if sink.wrote {
			fmt.Println("Configuration rejected.")
			return 1
		}
		fmt.Println("No debug mode configuration requested.")
		return 0
	}

	printConfig(cfg)
	fmt.Println("Configuration check completed successfully.")
	return 0
}

type flagWriter struct {
	out   io.Writer
	wrote bool
}

func (w *flagWriter) Write(p []byte) (int, error) {
	w.wrote = true
	return w.out.Write(p)
}

func printConfig(cfg *debugconfig.Config) {
	arns := make([]string, 0, len(cfg.Functions))
	for arn := range cfg.Functions {
		arns = append(arns, arn)
	}
	sort.Strings(arns)

	for _, arn := range arns {
		fc := cfg.Functions[arn]
		fmt.Printf("Function %s\n", arn)
		if fc.DebugPort != nil {
			fmt.Printf("  Debug port: %d\n", *fc.DebugPort)
		} else {
			fmt.Println("  Debug port: <none>")
		}
		fmt.Printf("  Timeout disabled: %t\n", fc.TimeoutDisable)
	}
}

func parseLabels(raw string) map[string]string {
	labels := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		labels[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return labels
}

func serveMetrics(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(listen, mux); err != nil {
		log.Error().Err(err).Str("listen", listen).Msg("metrics server stopped")
	}
}
