package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gloworm-vision/pigpio/hardware/gpio"
	"github.com/gloworm-vision/pigpio/hardware/pigpio"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	addr := flag.String("addr", pigpio.DefaultAddr, "pigpio daemon address")
	light := flag.Int("light", 18, "hardware PWM pin to fade")
	button := flag.Int("button", 4, "input pin to watch")
	frequency := flag.Int("frequency", 30000, "PWM frequency in Hz")
	metrics := flag.String("metrics", ":8080", "address to serve metrics on")
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	registry := prometheus.NewRegistry()

	client := pigpio.New(pigpio.Config{Addr: *addr, Logger: logger, Registerer: registry})
	version, err := client.Open(context.Background())
	if err != nil {
		panic(err)
	}
	defer client.Close()

	logger.WithField("version", version).Info("connected to pigpio daemon")

	g := gpio.NewPigpio(client)

	if err := client.SetMode(context.Background(), *button, pigpio.ModeInput); err != nil {
		panic(err)
	}

	stop, err := g.Watch(*button, func(e gpio.Edge) {
		logger.WithFields(logrus.Fields{"pin": e.Pin, "state": e.Level, "tick": e.Tick}).Info("edge")
	})
	if err != nil {
		panic(err)
	}
	defer stop()

	go func() {
		http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(*metrics, nil); err != nil {
			logger.WithError(err).Warn("metrics server stopped")
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	duty, step := 0.0, 0.01
	for {
		select {
		case <-ctx.Done():
			if err := g.PWM(*light, *frequency, 0); err != nil {
				logger.WithError(err).Warn("unable to turn off light")
			}
			return
		case <-ticker.C:
		}

		if err := g.PWM(*light, *frequency, duty); err != nil {
			logger.WithError(err).Error("unable to set light brightness")
		}

		duty += step
		if duty >= 1 || duty <= 0 {
			step = -step
			duty = min(max(duty, 0), 1)
		}
	}
}
