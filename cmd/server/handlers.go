package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/konkers/sdv-predict/internal/save"
	"github.com/konkers/sdv-predict/internal/service"
)

type errResp struct {
	Err string `json:"err"`
}

func newMux(p *service.Predictor) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/geode", func(w http.ResponseWriter, r *http.Request) {
		preds, err := p.Geode(query(r))
		respond(w, map[string]any{"predictions": preds}, err)
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		preds, err := p.Garbage(query(r))
		respond(w, map[string]any{"predictions": preds}, err)
	})
	mux.HandleFunc("/weather", func(w http.ResponseWriter, r *http.Request) {
		fc, err := p.Weather(query(r))
		respond(w, fc, err)
	})
	mux.HandleFunc("/weather_range", func(w http.ResponseWriter, r *http.Request) {
		res, err := p.WeatherDays(query(r))
		respond(w, res, err)
	})
	mux.HandleFunc("/night_event", func(w http.ResponseWriter, r *http.Request) {
		res, err := p.NightEvent(query(r))
		respond(w, res, err)
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		res, err := p.Forecast(r.Context(), query(r))
		respond(w, res, err)
	})
	mux.HandleFunc("/archive", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			n, err := p.Purge(r.Context(), query(r))
			respond(w, map[string]any{"deleted": n}, err)
			return
		}
		recs, err := p.Archived(r.Context(), query(r))
		respond(w, map[string]any{"records": recs}, err)
	})
	mux.HandleFunc("/conditions", func(w http.ResponseWriter, r *http.Request) {
		rep, err := p.Conditions()
		respond(w, rep, err)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := p.Source.Tables(); err != nil {
			respond(w, nil, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// query exposes the URL query as prediction parameters. Repeated mail
// params are accepted alongside the comma-separated form.
func query(r *http.Request) save.Lookup {
	q := r.URL.Query()
	return func(key string) (string, bool) {
		vs, ok := q[key]
		if !ok || len(vs) == 0 {
			return "", false
		}
		if key == "mail" && len(vs) > 1 {
			out := vs[0]
			for _, v := range vs[1:] {
				out += "," + v
			}
			return out, true
		}
		return vs[0], true
	}
}

func statusOf(err error) int {
	switch service.Classify(err) {
	case service.KindBadRequest:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindBadData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, v any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		code := statusOf(err)
		if code == http.StatusInternalServerError {
			log.Printf("internal error: %v", err)
		}
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(errResp{Err: err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
