package server

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gloworm-vision/pigpio/hardware/pigpio"
	"github.com/gloworm-vision/pigpio/store"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server exposes the pins of a pigpio daemon over HTTP and keeps pin presets
// in a store.
type Server struct {
	Addr string

	Client   *pigpio.Client
	Store    store.Store
	Gatherer prometheus.Gatherer
	Logger   *logrus.Logger

	watchManager *watchManager
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	if s.Logger == nil {
		s.Logger = logrus.New()
	}

	if s.watchManager == nil {
		s.watchManager = &watchManager{client: s.Client, watches: map[int]*watch{}}
	}

	mux := httprouter.New()

	mux.HandlerFunc(http.MethodGet, "/version", s.version)

	mux.HandlerFunc(http.MethodGet, "/pins/:pin", s.getPin)
	mux.HandlerFunc(http.MethodPut, "/pins/:pin", s.putPin)
	mux.HandlerFunc(http.MethodGet, "/pins/:pin/edges", s.edges)
	mux.HandlerFunc(http.MethodPut, "/pins/:pin/watch", s.watch)
	mux.HandlerFunc(http.MethodDelete, "/pins/:pin/watch", s.unwatch)

	mux.HandlerFunc(http.MethodGet, "/presets", s.presets)
	mux.HandlerFunc(http.MethodGet, "/presets/:pin", s.getPreset)
	mux.HandlerFunc(http.MethodPut, "/presets/:pin", s.putPreset)
	mux.HandlerFunc(http.MethodDelete, "/presets/:pin", s.deletePreset)

	mux.HandlerFunc(http.MethodPost, "/rpc/applyPresets", s.applyPresets)

	if s.Gatherer != nil {
		mux.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

// Run applies the stored presets and serves HTTP until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	handler := s.Handler()
	defer s.watchManager.Close()

	if err := s.apply(ctx); err != nil {
		s.Logger.Warnf("unable to apply presets: %s", err)
	}

	httpServer := &http.Server{
		Addr:              s.Addr,
		Handler:           handler,
		ReadTimeout:       time.Second * 15,
		ReadHeaderTimeout: time.Second * 15,
		IdleTimeout:       time.Second * 30,
		MaxHeaderBytes:    4096,
	}

	listenErrs := make(chan error, 1)
	go func() {
		s.Logger.WithField("addr", s.Addr).Info("serving http")
		listenErrs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-listenErrs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	}
}

// apply puts every stored preset's pin into its preset state, in pin order.
// Failing pins are logged and skipped.
func (s *Server) apply(ctx context.Context) error {
	presets, err := s.Store.Presets()
	if err != nil {
		return fmt.Errorf("unable to load presets: %w", err)
	}

	pins := make([]int, 0, len(presets))
	for pin := range presets {
		pins = append(pins, pin)
	}
	sort.Ints(pins)

	var failed int
	for _, pin := range pins {
		if err := s.applyPreset(ctx, pin, presets[pin]); err != nil {
			s.Logger.WithField("pin", pin).Warnf("unable to apply preset: %s", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d presets failed", failed, len(pins))
	}

	return nil
}

func (s *Server) applyPreset(ctx context.Context, pin int, p store.Preset) error {
	switch p.Kind {
	case store.KindOutput:
		if err := s.Client.SetMode(ctx, pin, pigpio.ModeOutput); err != nil {
			return err
		}

		state := pigpio.Low
		if p.Level {
			state = pigpio.High
		}

		return s.Client.Write(ctx, pin, state)
	case store.KindPWM:
		return s.Client.HardwarePWM(ctx, pin, p.Frequency, int(p.Duty*pigpio.MaxHardwareDuty))
	case store.KindServo:
		return s.Client.SetServoPulseWidth(ctx, pin, p.PulseWidth)
	}

	return fmt.Errorf("unknown preset kind %q", p.Kind)
}
