package runtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// ReadyCheck is a named dependency check for /readyz.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

const readyCheckTimeout = 2 * time.Second

// NewBaseMuxWithReady returns a mux preloaded with /healthz and /readyz.
// Liveness is unconditional; readiness runs every check and reports the
// per-dependency outcome.
func NewBaseMuxWithReady(checks ...ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", readyHandler(checks))
	return mux
}

func readyHandler(checks []ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, check := range checks {
			if check.Check == nil {
				continue
			}
			name := check.Name
			if name == "" {
				name = "dependency"
			}
			ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
			err := check.Check(ctx)
			cancel()
			if err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				results[name] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	}
}
