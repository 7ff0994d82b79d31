package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Serve exposes the registry on addr under /metrics for the lifetime of the
// run. It returns the server so the caller can shut it down; ListenAndServe
// errors are reported through errc.
func (r *Registry) Serve(addr string, errc chan<- error) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if errc != nil {
				errc <- err
			}
		}
	}()
	return srv
}
