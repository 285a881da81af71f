package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mattfenwick/scan-utils/pkg/command"
	"github.com/mattfenwick/scan-utils/pkg/connector"
	"github.com/mattfenwick/scan-utils/pkg/telemetry"
	"github.com/mattfenwick/scan-utils/pkg/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Responder .....
type Responder interface {
	GetInfo() string
	SubmitScan(name string, commands []*command.Command) (connector.ScanID, error)
	FetchScanInfo(id connector.ScanID) (*connector.ScanInfo, error)
	FetchScanData(id connector.ScanID) ([]*connector.Sample, error)
	ListScans() []*connector.ScanInfo
	AbortScan(id connector.ScanID) error
}

func RunServer(ctx context.Context, port int, server *Server) error {
	mux := http.NewServeMux()
	SetupHTTPServer(mux, server)
	server.Start(ctx)

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		utils.DoOrDie(httpServer.Shutdown(shutdownCtx))
	}()

	logrus.Infof("starting HTTP server on port %d", port)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrapf(err, "unable to serve on port %d", port)
}

// SetupHTTPServer .....
func SetupHTTPServer(mux *http.ServeMux, responder Responder) {
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			notFound(w, r)
			return
		}
		w.Header().Set(http.CanonicalHeaderKey("content-type"), "text/plain")
		_, err := fmt.Fprint(w, responder.GetInfo())
		logWriteError(err)
	})

	mux.HandleFunc("/scan", func(w http.ResponseWriter, r *http.Request) {
		_, span := telemetry.Tracer().Start(r.Context(), fmt.Sprintf("handle %s /scan", r.Method))
		defer span.End()

		switch r.Method {
		case "POST":
			var request connector.SubmitScanRequest
			err := json.NewDecoder(r.Body).Decode(&request)
			if err != nil {
				logrus.Errorf("unable to unmarshal JSON for scan POST: %s", err.Error())
				writeError(w, r, err, 400)
				return
			}
			id, err := responder.SubmitScan(request.Name, request.Commands)
			telemetry.RecordEvent("submit", "server", err)
			if err != nil {
				writeError(w, r, err, 400)
				return
			}
			writeJson(w, r, &connector.SubmitScanResponse{ID: id})
		case "GET":
			id, ok := scanId(w, r)
			if !ok {
				return
			}
			info, err := responder.FetchScanInfo(id)
			if err != nil {
				writeError(w, r, err, statusFor(err))
				return
			}
			writeJson(w, r, info)
		case "DELETE":
			id, ok := scanId(w, r)
			if !ok {
				return
			}
			if err := responder.AbortScan(id); err != nil {
				writeError(w, r, err, statusFor(err))
				return
			}
			w.WriteHeader(200)
		default:
			notFound(w, r)
		}
	})

	mux.HandleFunc("/scan/data", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			notFound(w, r)
			return
		}
		id, ok := scanId(w, r)
		if !ok {
			return
		}
		samples, err := responder.FetchScanData(id)
		if err != nil {
			writeError(w, r, err, statusFor(err))
			return
		}
		writeJson(w, r, samples)
	})

	mux.HandleFunc("/scans", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			notFound(w, r)
			return
		}
		infos := responder.ListScans()
		if infos == nil {
			infos = []*connector.ScanInfo{}
		}
		writeJson(w, r, infos)
	})
}

func scanId(w http.ResponseWriter, r *http.Request) (connector.ScanID, bool) {
	ids, ok := r.URL.Query()["scan-id"]
	if !ok || len(ids) == 0 {
		writeError(w, r, errors.Errorf("missing scan-id parameter"), 400)
		return connector.NoScanID, false
	}
	id, err := strconv.ParseInt(ids[0], 10, 64)
	if err != nil {
		writeError(w, r, errors.Wrapf(err, "invalid scan-id '%s'", ids[0]), 400)
		return connector.NoScanID, false
	}
	return connector.ScanID(id), true
}

func statusFor(err error) int {
	if errors.Is(err, ErrScanNotFound) {
		return 404
	}
	return 500
}

func writeJson(w http.ResponseWriter, r *http.Request, obj interface{}) {
	bytes, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		writeError(w, r, err, 500)
		return
	}
	w.Header().Set(http.CanonicalHeaderKey("content-type"), "application/json")
	_, err = w.Write(bytes)
	logWriteError(err)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(404)
	_, err := w.Write([]byte("not found"))
	logWriteError(err)
}

func writeError(w http.ResponseWriter, r *http.Request, httpError error, statusCode int) {
	logrus.Debugf("%s %s failed with %d: %s", r.Method, r.URL.Path, statusCode, httpError.Error())
	w.WriteHeader(statusCode)
	_, err := w.Write([]byte(httpError.Error()))
	logWriteError(err)
}

func logWriteError(err error) {
	if err != nil {
		logrus.Errorf("unable to write response: %+v", err)
	}
}
