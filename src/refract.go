// refract relays link-local multicast discovery traffic (mDNS, SSDP)
// between network segments that multicast cannot traverse natively.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmalloc/refract/src/refract/config"
	"github.com/jmalloc/refract/src/refract/relay"

	"github.com/dogmatiq/dodeca/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to the YAML configuration file.")
	debug := flag.Bool("debug", false, "Trace every relayed and dropped packet.")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "refract: no configuration file given")
		flag.PrintDefaults()
		return 2
	}

	var logger logging.Logger = logging.DefaultLogger
	if *debug {
		logger = logging.DebugLogger
	}

	set, options, err := config.Load(*configPath)
	if err != nil {
		logging.Log(logger, "%s", err)
		return 1
	}

	options = append(options, relay.UseLogger(logger))

	r, err := relay.New(set, options...)
	if err != nil {
		logging.Log(logger, "%s", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := r.Run(ctx); err != nil {
		logging.Log(logger, "%s", err)
		return 1
	}

	return 0
}
