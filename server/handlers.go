package server

import (
	"encoding/json"
	"net/http"

	"github.com/gloworm-vision/pigpio/hardware/pigpio"
	"github.com/gloworm-vision/pigpio/store"
)

type versionResponse struct {
	Daemon   int    `json:"daemon"`
	Hardware string `json:"hardware"`
}

type pinResponse struct {
	Pin   int    `json:"pin"`
	Mode  string `json:"mode"`
	Level bool   `json:"level"`
}

type pinRequest struct {
	Level bool `json:"level"`
}

type edgeResponse struct {
	Pin   int    `json:"pin"`
	Level bool   `json:"level"`
	Tick  uint32 `json:"tick"`
}

func (s *Server) version(res http.ResponseWriter, req *http.Request) {
	rev, err := s.Client.HardwareRevisionString(req.Context())
	if err != nil {
		fail(res, err)
		return
	}

	respond(res, versionResponse{Daemon: s.Client.Version(), Hardware: rev}, http.StatusOK)
}

func (s *Server) getPin(res http.ResponseWriter, req *http.Request) {
	pin, err := pinParam(req)
	if err != nil {
		respond(res, err, http.StatusBadRequest)
		return
	}

	mode, err := s.Client.Mode(req.Context(), pin)
	if err != nil {
		fail(res, err)
		return
	}

	state, err := s.Client.Read(req.Context(), pin)
	if err != nil {
		fail(res, err)
		return
	}

	respond(res, pinResponse{Pin: pin, Mode: mode.String(), Level: state == pigpio.High}, http.StatusOK)
}

func (s *Server) putPin(res http.ResponseWriter, req *http.Request) {
	pin, err := pinParam(req)
	if err != nil {
		respond(res, err, http.StatusBadRequest)
		return
	}

	var body pinRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respond(res, err, http.StatusUnprocessableEntity)
		return
	}

	state := pigpio.Low
	if body.Level {
		state = pigpio.High
	}

	if err := s.Client.Write(req.Context(), pin, state); err != nil {
		fail(res, err)
		return
	}

	respond(res, nil, http.StatusNoContent)
}

func (s *Server) watch(res http.ResponseWriter, req *http.Request) {
	pin, err := pinParam(req)
	if err != nil {
		respond(res, err, http.StatusBadRequest)
		return
	}

	if err := s.watchManager.Watch(pin); err != nil {
		fail(res, err)
		return
	}

	respond(res, nil, http.StatusNoContent)
}

func (s *Server) unwatch(res http.ResponseWriter, req *http.Request) {
	pin, err := pinParam(req)
	if err != nil {
		respond(res, err, http.StatusBadRequest)
		return
	}

	if err := s.watchManager.Unwatch(pin); err != nil {
		fail(res, err)
		return
	}

	respond(res, nil, http.StatusNoContent)
}

func (s *Server) edges(res http.ResponseWriter, req *http.Request) {
	pin, err := pinParam(req)
	if err != nil {
		respond(res, err, http.StatusBadRequest)
		return
	}

	edges, err := s.watchManager.Edges(pin)
	if err != nil {
		fail(res, err)
		return
	}

	out := make([]edgeResponse, 0, len(edges))
	for _, e := range edges {
		out = append(out, edgeResponse{Pin: e.Pin, Level: e.State == pigpio.High, Tick: e.Tick})
	}

	respond(res, out, http.StatusOK)
}

func (s *Server) presets(res http.ResponseWriter, req *http.Request) {
	presets, err := s.Store.Presets()
	if err != nil {
		respond(res, err, http.StatusInternalServerError)
		return
	}

	respond(res, presets, http.StatusOK)
}

func (s *Server) getPreset(res http.ResponseWriter, req *http.Request) {
	pin, err := pinParam(req)
	if err != nil {
		respond(res, err, http.StatusBadRequest)
		return
	}

	preset, err := s.Store.Preset(pin)
	if err != nil {
		fail(res, err)
		return
	}

	respond(res, preset, http.StatusOK)
}

func (s *Server) putPreset(res http.ResponseWriter, req *http.Request) {
	pin, err := pinParam(req)
	if err != nil {
		respond(res, err, http.StatusBadRequest)
		return
	}

	var preset store.Preset
	if err := json.NewDecoder(req.Body).Decode(&preset); err != nil {
		respond(res, err, http.StatusUnprocessableEntity)
		return
	}

	if err := preset.Validate(); err != nil {
		respond(res, err, http.StatusUnprocessableEntity)
		return
	}

	if err := s.Store.PutPreset(pin, preset); err != nil {
		respond(res, err, http.StatusInternalServerError)
		return
	}

	respond(res, nil, http.StatusNoContent)
}

func (s *Server) deletePreset(res http.ResponseWriter, req *http.Request) {
	pin, err := pinParam(req)
	if err != nil {
		respond(res, err, http.StatusBadRequest)
		return
	}

	if err := s.Store.DeletePreset(pin); err != nil {
		fail(res, err)
		return
	}

	respond(res, nil, http.StatusNoContent)
}

func (s *Server) applyPresets(res http.ResponseWriter, req *http.Request) {
	if err := s.apply(req.Context()); err != nil {
		fail(res, err)
		return
	}

	respond(res, nil, http.StatusOK)
}
