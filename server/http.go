package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gloworm-vision/pigpio/hardware/pigpio"
	"github.com/gloworm-vision/pigpio/store"
	"github.com/julienschmidt/httprouter"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respond encodes the data and ResponseError to JSON and responds with it and
// the http code. If the encoding fails, sets an InternalServerError.
func respond(w http.ResponseWriter, data interface{}, httpCode int) {
	var resp interface{}
	if v, ok := data.(error); ok {
		resp = errorResponse{Error: v.Error()}
	} else {
		resp = data
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)

	if resp != nil {
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// fail responds with err and a status code matching its kind.
func fail(w http.ResponseWriter, err error) {
	var (
		validation *pigpio.ValidationError
		protocol   *pigpio.ProtocolError
		transport  *pigpio.TransportError
	)

	switch {
	case errors.As(err, &validation):
		respond(w, err, http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, errNotWatched):
		respond(w, err, http.StatusNotFound)
	case errors.As(err, &protocol):
		respond(w, err, http.StatusBadGateway)
	case errors.As(err, &transport), errors.Is(err, pigpio.ErrNotConnected), errors.Is(err, pigpio.ErrShutdown):
		respond(w, err, http.StatusServiceUnavailable)
	default:
		respond(w, err, http.StatusInternalServerError)
	}
}

// pinParam reads the :pin route parameter.
func pinParam(req *http.Request) (int, error) {
	params := httprouter.ParamsFromContext(req.Context())

	pin, err := strconv.Atoi(params.ByName("pin"))
	if err != nil {
		return 0, errors.New("pin must be a number")
	}

	return pin, nil
}
