// Package main provides a standalone health probe for the NutriSmart planner.
// It is meant for container health checks and monitoring scripts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/nutrismart/planner/pkg/healthcheck"
	"github.com/nutrismart/planner/pkg/logger"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// Options holds command-line configuration
type Options struct {
	URL          string
	Timeout      time.Duration
	Verbose      bool
	OutputFormat string
	Expect       string
	RetryCount   int
	RetryDelay   time.Duration
}

// probeResult is the subset of the health, readiness and liveness bodies we read
type probeResult struct {
	Status string `json:"status"`
	Checks []struct {
		Name    string  `json:"name"`
		Status  string  `json:"status"`
		Message string  `json:"message,omitempty"`
		Millis  float64 `json:"duration_ms"`
	} `json:"checks,omitempty"`
	raw map[string]interface{}
}

func main() {
	opts := parseFlags()

	log, err := logger.New(logger.Config{Level: "warn", Format: "console", OutputPaths: []string{"stderr"}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(exitCodeError)
	}
	defer func() { _ = log.Sync() }()

	os.Exit(run(context.Background(), opts, &http.Client{Timeout: opts.Timeout}, os.Stdout, log))
}

func parseFlags() Options {
	opts := Options{}

	flag.StringVar(&opts.URL, "url", envOr("HEALTH_CHECK_URL", "http://localhost:8080/health/ready"), "Health endpoint URL")
	flag.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "Request timeout")
	flag.BoolVar(&opts.Verbose, "verbose", false, "Print individual checks")
	flag.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json")
	flag.StringVar(&opts.Expect, "expect", "", "Required status; empty accepts healthy, degraded, ready and alive")
	flag.IntVar(&opts.RetryCount, "retry", 0, "Number of retries on failure")
	flag.DurationVar(&opts.RetryDelay, "retry-delay", time.Second, "Delay between retries")
	flag.Parse()

	return opts
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// run probes opts.URL and returns the process exit code
func run(ctx context.Context, opts Options, client *http.Client, out io.Writer, log *zap.Logger) int {
	var lastErr error
	for attempt := 0; attempt <= opts.RetryCount; attempt++ {
		if attempt > 0 {
			log.Info("Retrying health probe", zap.Int("attempt", attempt), zap.Duration("delay", opts.RetryDelay))
			select {
			case <-time.After(opts.RetryDelay):
			case <-ctx.Done():
				return exitCodeError
			}
		}

		result, err := probe(ctx, client, opts.URL)
		if err != nil {
			lastErr = err
			log.Warn("Health probe failed", zap.String("url", opts.URL), zap.Error(err))
			continue
		}

		render(out, result, opts)
		if accepted(result.Status, opts.Expect) {
			return exitCodeSuccess
		}
		return exitCodeFailure
	}

	fmt.Fprintf(out, "Health check failed after %d attempts: %v\n", opts.RetryCount+1, lastErr)
	return exitCodeError
}

func probe(ctx context.Context, client *http.Client, url string) (*probeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	result := &probeResult{}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if err := json.Unmarshal(body, &result.raw); err != nil {
		return nil, err
	}
	return result, nil
}

func accepted(status, expect string) bool {
	if expect != "" {
		return status == expect
	}
	switch status {
	case string(healthcheck.StatusHealthy), string(healthcheck.StatusDegraded), "ready", "alive":
		return true
	}
	return false
}

func render(out io.Writer, result *probeResult, opts Options) {
	if opts.OutputFormat == "json" {
		data, _ := json.MarshalIndent(result.raw, "", "  ")
		fmt.Fprintln(out, string(data))
		return
	}

	fmt.Fprintf(out, "Status: %s\n", result.Status)
	if opts.Verbose && len(result.Checks) > 0 {
		fmt.Fprintln(out, "Checks:")
		for _, check := range result.Checks {
			fmt.Fprintf(out, "  %s: %s", check.Name, check.Status)
			if check.Message != "" {
				fmt.Fprintf(out, " (%s)", check.Message)
			}
			fmt.Fprintf(out, " [%.0fms]\n", check.Millis)
		}
	}
}
