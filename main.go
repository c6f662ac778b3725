package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/streamdal/mavmon/monitor"
	"github.com/streamdal/mavmon/options"
	"github.com/streamdal/mavmon/printer"
)

func main() {
	opts, err := options.New(os.Args[1:])
	if err != nil {
		printer.Error(err.Error())
		fmt.Fprint(os.Stderr, options.Usage)
		os.Exit(1)
	}

	if opts.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	serviceCtx, serviceShutdownFunc := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-signalCh
		logrus.Debugf("received signal '%s', shutting down", sig)
		serviceShutdownFunc()
	}()

	m, err := monitor.New(&monitor.Config{
		Options:            opts,
		ServiceShutdownCtx: serviceCtx,
	})
	if err != nil {
		logrus.Fatalf("Unable to create monitor: %s", err)
	}

	if err := m.Run(); err != nil {
		logrus.Fatalf("Unable to complete monitoring: %s", err)
	}

	printer.Print("Unsubscribed from MAVLink messages, exiting.")
}
