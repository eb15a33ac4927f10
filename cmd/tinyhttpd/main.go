package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"dqx0.com/go/tinyhttpd/httpx"
	"dqx0.com/go/tinyhttpd/internal/config"
	"dqx0.com/go/tinyhttpd/internal/filestore"
	"dqx0.com/go/tinyhttpd/internal/obs"
	"dqx0.com/go/tinyhttpd/internal/router"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args, os.Getenv, stderr)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if cfg.Probe != "" {
		return probe(cfg, stdout, stderr)
	}

	logger := newLogger(cfg, stderr)
	store, err := filestore.Open(filestore.Kind(cfg.Store), cfg.Directory)
	if err != nil {
		logger.Logf(obs.Error, "open %s store: %v", cfg.Store, err)
		return 1
	}
	defer store.Close()

	meter := obs.NewMemMeter()
	if cfg.MetricsInterval > 0 {
		go dumpMetrics(meter, logger, cfg.MetricsInterval)
	}

	s := &httpx.Server{
		Addr:    cfg.Addr,
		Handler: router.New(store, logger),
		Logger:  logger,
		Meter:   meter,
	}
	logger.Logf(obs.Info, "serving %s from %s (%s store)", cfg.Addr, cfg.Directory, cfg.Store)
	if err := s.ListenAndServe(); err != nil {
		logger.Logf(obs.Error, "serve: %v", err)
		return 1
	}
	return 0
}

func newLogger(cfg config.Config, w io.Writer) obs.Logger {
	level, _ := obs.ParseLevel(cfg.LogLevel)
	switch cfg.LogFormat {
	case "std":
		return obs.StdLogger{L: log.New(w, "tinyhttpd ", log.LstdFlags), Min: level}
	case "json":
		return obs.NewZerolog(w, level, false)
	default:
		return obs.NewZerolog(w, level, true)
	}
}

func probe(cfg config.Config, stdout, stderr io.Writer) int {
	c := &httpx.Client{Timeout: 5 * time.Second}
	res, err := c.Get(cfg.Addr, cfg.Probe)
	if err != nil {
		fmt.Fprintf(stderr, "probe %s%s: %v\n", cfg.Addr, cfg.Probe, err)
		return 1
	}
	fmt.Fprintf(stdout, "%s %d %s\n", res.Proto, res.StatusCode, res.Status)
	for _, line := range res.Header {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout)
	stdout.Write(res.Body)
	if res.StatusCode >= 400 {
		return 1
	}
	return 0
}

func dumpMetrics(m *obs.MemMeter, logger obs.Logger, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for range t.C {
		counters, hists := m.Snapshot()
		keys := make([]string, 0, len(counters))
		for k := range counters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			logger.Logf(obs.Debug, "metric %s %g", k, counters[k])
		}
		for k, h := range hists {
			logger.Logf(obs.Debug, "metric %s count=%d sum=%g max=%g", k, h.Count, h.Sum, h.Max)
		}
	}
}
