package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type RequestObserver interface {
	ObserveRequest(route string, code string, seconds float64)
}

// RequestMetrics reports request latency labelled by the matched chi route pattern.
type RequestMetrics struct {
	observer RequestObserver
}

func NewRequestMetrics(observer RequestObserver) *RequestMetrics {
	return &RequestMetrics{
		observer: observer,
	}
}

func (rm *RequestMetrics) CreateHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		rm.observer.ObserveRequest(route, strconv.Itoa(status), time.Since(start).Seconds())
	})
}
