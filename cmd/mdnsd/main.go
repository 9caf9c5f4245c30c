package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/mdnsd/internal/advertise"
	"github.com/dmdmdm-nz/mdnsd/internal/api"
	"github.com/dmdmdm-nz/mdnsd/internal/netmon"
	"github.com/dmdmdm-nz/mdnsd/internal/runtime"
	"github.com/dmdmdm-nz/mdnsd/pkg/cli"
	"github.com/dmdmdm-nz/mdnsd/pkg/version"
)

func main() {
	cfg, err := cli.Parse("mdnsd", os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "argument error: %v\n", err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Printf("mdnsd version %s (commit: %s, built at: %s)\n",
			version.Version,
			version.CommitHash,
			version.BuildTime)
		return
	}

	setLogLevel(cfg.LogLevel)
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FullTimestamp:   true,
	})

	filter := netmon.FilterFromValues(cfg.Interfaces)

	log.Infof("Config: Name=%s", cfg.Name)
	log.Infof("Config: Interfaces=%s", filter)
	log.Infof("Config: PollInterval=%s", cfg.PollInterval)
	log.Infof("Config: LogLevel=%s", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mgr := advertise.NewManager(advertise.NewZeroconfAdvertiser())
	monSvc := netmon.NewService(cfg.Name, filter, netmon.SystemEnumerator{}, mgr, cfg.PollInterval, netmon.NewWatcher())

	super := runtime.NewSupervisor()
	super.Add("netmon", monSvc.Start, monSvc.Close)

	if cfg.APIPort > 0 {
		apiSvc := api.NewService(cfg.APIHost, cfg.APIPort)
		apiSvc.AttachMonitor(monSvc)
		super.Add("api", apiSvc.Start, apiSvc.Close)
	}

	if err := super.Start(ctx); err != nil {
		log.WithError(err).Error("Failed to start services")
		os.Exit(1)
	}
	if err := super.Wait(ctx); err != nil {
		log.WithError(err).Error("mdnsd exited with error")
		os.Exit(1)
	}
}

func setLogLevel(level string) {
	switch level {
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
