package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/heartbeat"
)

func main() {
	var (
		once     bool
		interval time.Duration
		endpoint string
		logFile  string
	)

	flag.BoolVar(&once, "once", false, "run a single probe and exit")
	flag.DurationVar(&interval, "interval", heartbeat.DefaultInterval, "interval between probes")
	flag.StringVar(&endpoint, "url", heartbeat.DefaultEndpoint, "GraphQL endpoint URL")
	flag.StringVar(&logFile, "log-file", heartbeat.DefaultLogFile, "heartbeat log file path")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	worker := heartbeat.NewWorker(
		heartbeat.WithEndpoint(endpoint),
		heartbeat.WithLogFile(logFile),
		heartbeat.WithInterval(interval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once {
		worker.ProcessOnce(ctx)
		return
	}

	log.WithFields(log.Fields{
		"url":      endpoint,
		"interval": interval,
		"log_file": logFile,
	}).Info("запускаем heartbeat-воркер")

	worker.Run(ctx)
	log.Info("heartbeat-воркер остановлен")
}
