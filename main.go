// Starts the streammill http service: activity normalization, original-post
// discovery, and feed ingestion over a small JSON API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/kgrayson/streammill/server"
	"github.com/kgrayson/streammill/server/telemetry"
)

func readConfig(filename string) server.Config {
	var cfg server.Config
	b, err := os.ReadFile(filename)
	if err != nil {
		telemetry.Error(err, "opening config [%s]", filename)
	} else {
		c, err := server.ReadConfig(b)
		if err != nil {
			telemetry.Error(err, "parsing config [%s]", filename)
		}
		cfg = c
	}

	return cfg
}

func main() {
	configFile := flag.String("config", "config.json", "config json file")
	port := flag.Int("port", 0, "listen port")
	userAgent := flag.String("useragent", "", "outbound user agent")

	flag.Parse()

	telemetry.Log("starting streammill")

	cfg := readConfig(*configFile)
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if *userAgent != "" {
		cfg.Server.UserAgent = *userAgent
	}

	svc := server.NewService(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := svc.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error(err, "http listener")
			cancel()
		}
	}()

	// Wait for ^C
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	select {
	case <-c:
	case <-ctx.Done():
	}
	telemetry.Log("stopping streammill")
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second*60)
	defer stopCancel()
	svc.Stop(stopCtx)
	telemetry.Log("stopped streammill cleanly")
}
