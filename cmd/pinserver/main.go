package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/gloworm-vision/pigpio/hardware/pigpio"
	"github.com/gloworm-vision/pigpio/server"
	"github.com/gloworm-vision/pigpio/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	registry := prometheus.NewRegistry()

	client := pigpio.New(pigpio.Config{Addr: pigpio.DefaultAddr, Logger: logger, Registerer: registry})
	if _, err := client.Open(context.Background()); err != nil {
		panic(err)
	}
	defer client.Close()

	store, err := store.OpenBBolt("store.db", 0666, nil)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	server := server.Server{Addr: ":8080", Client: client, Store: store, Gatherer: registry, Logger: logger}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := server.Run(ctx); err != nil {
		logger.WithError(err).Error("server stopped")
	}
}
