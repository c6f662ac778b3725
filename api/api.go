package api

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/streamdal/mavmon/stats"
)

var (
	ErrMissingListenAddress = errors.New("ListenAddress cannot be empty")
	ErrMissingGatherer      = errors.New("Gatherer cannot be nil")
	ErrMissingSnapshotter   = errors.New("Snapshotter cannot be nil")
)

type Config struct {
	ListenAddress string
	Version       string
	Gatherer      prometheus.Gatherer
	Snapshotter   stats.ISnapshotter
	Monitored     []string
}

type API struct {
	*Config

	log *logrus.Entry
}

type ResponseJSON struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Values  map[string]string `json:"values,omitempty"`
	Errors  string            `json:"errors,omitempty"`
}

type MessageStatJSON struct {
	Name       string     `json:"name"`
	Count      uint64     `json:"count"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

// Start binds ListenAddress and serves the API in the background. Bind
// failures are returned; later serve errors are logged.
func Start(cfg *Config) (*http.Server, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "unable to validate config")
	}

	a := &API{
		Config: cfg,
		log:    logrus.WithField("pkg", "api"),
	}

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to listen on '%s'", cfg.ListenAddress)
	}

	a.log.Debugf("starting API server on %s", listener.Addr())

	srv := &http.Server{
		Addr:    listener.Addr().String(),
		Handler: a.newRouter(),
	}

	go func() {
		if err := srv.Serve(listener); err != nil {
			if err != http.ErrServerClosed {
				a.log.Errorf("unable to srv.Serve: %s", err)
			}
		}
	}()

	return srv, nil
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	if cfg.ListenAddress == "" {
		return ErrMissingListenAddress
	}

	if cfg.Gatherer == nil {
		return ErrMissingGatherer
	}

	if cfg.Snapshotter == nil {
		return ErrMissingSnapshotter
	}

	return nil
}

func (a *API) newRouter() *httprouter.Router {
	router := httprouter.New()

	router.HandlerFunc("GET", "/health-check", a.healthCheckHandler)
	router.HandlerFunc("GET", "/version", a.versionHandler)

	router.Handle("GET", "/v1/stats", a.getStatsHandler)
	router.Handle("GET", "/v1/stats/:name", a.getStatHandler)

	router.Handler("GET", "/metrics", promhttp.HandlerFor(a.Gatherer, promhttp.HandlerOpts{}))

	return router
}

func (a *API) healthCheckHandler(rw http.ResponseWriter, r *http.Request) {
	WriteJSON(http.StatusOK, map[string]string{"status": "ok"}, rw)
}

func (a *API) versionHandler(rw http.ResponseWriter, r *http.Request) {
	response := &ResponseJSON{Status: http.StatusOK, Message: "mavmon " + a.Version}

	WriteJSON(http.StatusOK, response, rw)
}

func (a *API) getStatsHandler(rw http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap := a.Snapshotter.Snapshot()

	out := make([]*MessageStatJSON, 0, len(a.Monitored))

	for _, name := range a.Monitored {
		out = append(out, toStatJSON(name, snap))
	}

	WriteJSON(http.StatusOK, out, rw)
}

func (a *API) getStatHandler(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	name := p.ByName("name")

	if !a.isMonitored(name) {
		WriteErrorJSON(http.StatusNotFound, "message '"+name+"' is not monitored", rw)
		return
	}

	WriteJSON(http.StatusOK, toStatJSON(name, a.Snapshotter.Snapshot()), rw)
}

func (a *API) isMonitored(name string) bool {
	for _, m := range a.Monitored {
		if m == name {
			return true
		}
	}

	return false
}

func toStatJSON(name string, snap stats.Snapshot) *MessageStatJSON {
	stat := &MessageStatJSON{Name: name}

	if entry, ok := snap.Get(name); ok {
		lastSeen := entry.LastSeenAt
		stat.Count = entry.Count
		stat.LastSeenAt = &lastSeen
	}

	return stat
}

func WriteJSON(statusCode int, data interface{}, w http.ResponseWriter) {
	w.Header().Add("Content-type", "application/json")

	jsonData, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(500)
		logrus.Errorf("Unable to marshal data in WriteJSON: %s", err)
		return
	}

	w.WriteHeader(statusCode)

	if _, err := w.Write(jsonData); err != nil {
		logrus.Errorf("Unable to write response data: %s", err)
		return
	}
}

func WriteErrorJSON(statusCode int, msg string, w http.ResponseWriter) {
	WriteJSON(statusCode, map[string]string{"error": msg}, w)
}
