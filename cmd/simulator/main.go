// Command simulator drives the API with synthetic customers: each driver
// registers an account and a vehicle, then books slots and runs charging
// sessions against the configured server.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

var (
	serverURL = flag.String("server", "http://localhost:8080", "API base URL")
	drivers   = flag.Int("drivers", 5, "Number of concurrent synthetic drivers")
	thinkTime = flag.Duration("think", 2*time.Second, "Pause between driver actions")
	chargeFor = flag.Duration("charge", 5*time.Second, "How long a simulated charge runs")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := Config{
		BaseURL:   *serverURL,
		ThinkTime: *thinkTime,
		ChargeFor: *chargeFor,
	}

	stopCh := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nstopping simulator...")
		close(stopCh)
	}()

	fmt.Printf("chargegrid simulator: %d drivers against %s\n", *drivers, *serverURL)
	fmt.Println("press Ctrl+C to stop")

	var wg sync.WaitGroup
	for i := 0; i < *drivers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			d := NewDriver(n, cfg, logger)
			d.Run(stopCh)
		}(i)
	}
	wg.Wait()
}
