package server

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gloworm-vision/pigpio/hardware/pigpio"
	"github.com/gloworm-vision/pigpio/internal/daemontest"
	"github.com/gloworm-vision/pigpio/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	daemon *daemontest.Daemon
	store  store.Store
	http   *httptest.Server
	server *Server
}

func setup(t *testing.T) *fixture {
	t.Helper()

	d := daemontest.New(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	registry := prometheus.NewRegistry()

	client := pigpio.New(pigpio.Config{Addr: d.Addr(), Logger: logger, Registerer: registry})
	_, err := client.Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	st, err := store.OpenBBolt(filepath.Join(t.TempDir(), "presets.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s := &Server{Client: client, Store: st, Gatherer: registry, Logger: logger}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	t.Cleanup(s.watchManager.Close)

	return &fixture{daemon: d, store: st, http: srv, server: s}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, f.http.URL+path, rd)
	require.NoError(t, err)

	res, err := f.http.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, out
}

func TestVersion(t *testing.T) {
	f := setup(t)
	f.daemon.Handle(pigpio.CmdHWVER, daemontest.Result(0xa02082))

	code, body := f.do(t, http.MethodGet, "/version", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"daemon":79,"hardware":"a02082"}`, string(body))
}

func TestPins(t *testing.T) {
	f := setup(t)

	code, _ := f.do(t, http.MethodPut, "/pins/13", pinRequest{Level: true})
	require.Equal(t, http.StatusNoContent, code)

	reqs := f.daemon.RequestsFor(pigpio.CmdWRITE)
	require.Len(t, reqs, 1)
	assert.Equal(t, int32(13), reqs[0].P1)
	assert.Equal(t, int32(1), reqs[0].P2)

	f.daemon.SetLevels(1 << 4)

	code, body := f.do(t, http.MethodGet, "/pins/4", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"pin":4,"mode":"INPUT","level":true}`, string(body))
}

func TestPinErrors(t *testing.T) {
	f := setup(t)

	code, _ := f.do(t, http.MethodGet, "/pins/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodGet, "/pins/99", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	f.daemon.Handle(pigpio.CmdWRITE, daemontest.Result(int32(pigpio.CodeBadGPIO)))

	code, body := f.do(t, http.MethodPut, "/pins/4", pinRequest{})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, string(body), "error")
}

func TestPresets(t *testing.T) {
	f := setup(t)

	code, _ := f.do(t, http.MethodGet, "/presets/18", nil)
	assert.Equal(t, http.StatusNotFound, code)

	light := store.Preset{Kind: store.KindPWM, Frequency: 30000, Duty: 0.5}
	code, _ = f.do(t, http.MethodPut, "/presets/18", light)
	require.Equal(t, http.StatusNoContent, code)

	code, _ = f.do(t, http.MethodPut, "/presets/4", store.Preset{Kind: store.KindOutput, Level: true})
	require.Equal(t, http.StatusNoContent, code)

	code, _ = f.do(t, http.MethodPut, "/presets/5", store.Preset{Kind: "blink"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body := f.do(t, http.MethodGet, "/presets/18", nil)
	require.Equal(t, http.StatusOK, code)

	var got store.Preset
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, light, got)

	code, body = f.do(t, http.MethodGet, "/presets", nil)
	require.Equal(t, http.StatusOK, code)

	var all map[int]store.Preset
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Len(t, all, 2)

	code, _ = f.do(t, http.MethodPost, "/rpc/applyPresets", nil)
	require.Equal(t, http.StatusOK, code)

	hp := f.daemon.RequestsFor(pigpio.CmdHP)
	require.Len(t, hp, 1)
	assert.Equal(t, int32(18), hp[0].P1)
	assert.Equal(t, int32(30000), hp[0].P2)
	assert.Equal(t, uint32(500000), binary.LittleEndian.Uint32(hp[0].Payload))

	modes := f.daemon.RequestsFor(pigpio.CmdMODES)
	require.Len(t, modes, 1)
	assert.Equal(t, int32(4), modes[0].P1)
	assert.Equal(t, int32(pigpio.ModeOutput), modes[0].P2)

	code, _ = f.do(t, http.MethodDelete, "/presets/4", nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = f.do(t, http.MethodDelete, "/presets/4", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestApplyPresetsReportsFailures(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.store.PutPreset(12, store.Preset{Kind: store.KindServo, PulseWidth: 1500}))
	f.daemon.Handle(pigpio.CmdSERVO, daemontest.Result(int32(pigpio.CodeBadUserGPIO)))

	code, _ := f.do(t, http.MethodPost, "/rpc/applyPresets", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Len(t, f.daemon.RequestsFor(pigpio.CmdSERVO), 1)
}

func TestWatch(t *testing.T) {
	f := setup(t)

	code, _ := f.do(t, http.MethodGet, "/pins/17/edges", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodPut, "/pins/17/watch", nil)
	require.Equal(t, http.StatusNoContent, code)

	require.Eventually(t, func() bool {
		mask, ok := f.daemon.Subscription(0)
		return ok && mask == 1<<17
	}, 3*time.Second, 5*time.Millisecond)

	f.daemon.PushLevels(1 << 17)

	var edges []edgeResponse
	require.Eventually(t, func() bool {
		code, body := f.do(t, http.MethodGet, "/pins/17/edges", nil)
		if code != http.StatusOK {
			return false
		}
		edges = nil
		return json.Unmarshal(body, &edges) == nil && len(edges) == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, edgeResponse{Pin: 17, Level: true, Tick: 1000}, edges[0])

	code, _ = f.do(t, http.MethodDelete, "/pins/17/watch", nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = f.do(t, http.MethodDelete, "/pins/17/watch", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, uint32(0), f.server.Client.Monitor().Mask())
}

func TestMetrics(t *testing.T) {
	f := setup(t)

	code, _ := f.do(t, http.MethodPut, "/pins/13", pinRequest{Level: true})
	require.Equal(t, http.StatusNoContent, code)

	code, body := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `pigpio_client_commands_total{command="WRITE",result="ok"}`)
}
