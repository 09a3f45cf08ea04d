package runtime

import (
	"context"
	"net/http"
	"time"
)

const readyCheckTimeout = 2 * time.Second

// ReadyCheck is one named dependency probed by /readyz. A nil Check is
// skipped, which lets callers register checks conditionally.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

func (c ReadyCheck) run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, readyCheckTimeout)
	defer cancel()
	return c.Check(ctx)
}

// NewBaseMuxWithReady returns a mux preloaded with the liveness and
// readiness endpoints. /healthz always answers ok; /readyz answers 503
// with one line per failing dependency.
func NewBaseMuxWithReady(checks ...ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", readinessHandler(checks))
	return mux
}

func readinessHandler(checks []ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := "ok"
		status := http.StatusOK
		for _, check := range checks {
			if check.Check == nil {
				continue
			}
			if err := check.run(r.Context()); err != nil {
				name := check.Name
				if name == "" {
					name = "dependency"
				}
				if status == http.StatusOK {
					status = http.StatusServiceUnavailable
					body = ""
				} else {
					body += "\n"
				}
				body += name + ": " + err.Error()
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
