package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mercantis_ledger_polls_total",
		Help: "The total number of ledger confirmation lookups",
	})
	transientErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mercantis_ledger_transient_errors_total",
		Help: "The total number of transient ledger lookup failures",
	})
	listingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mercantis_listings_created_total",
		Help: "The total number of listings materialized from confirmed payments",
	})
	duplicatesRemovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mercantis_duplicates_removed_total",
		Help: "The total number of duplicated listings removed by the guard",
	})
)

// Config contains configuration of the telemetry endpoint.
type Config struct {
	Port int `yaml:"port"` // Port the prometheus metrics are exposed on.
}

// IncPoll counts a single ledger confirmation lookup.
func IncPoll() {
	pollsTotal.Inc()
}

// IncTransientError counts a transient ledger lookup failure.
func IncTransientError() {
	transientErrorsTotal.Inc()
}

// IncListingCreated counts a materialized listing.
func IncListingCreated() {
	listingsCreatedTotal.Inc()
}

// AddDuplicatesRemoved counts listings removed by the deduplication guard.
func AddDuplicatesRemoved(n int) {
	duplicatesRemovedTotal.Add(float64(n))
}

// Run starts the server with the prometheus telemetry endpoint.
// This function blocks. To stop it cancel ctx.
func Run(ctx context.Context, cancel context.CancelFunc, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := http.Server{Addr: fmt.Sprintf(":%v", port), Handler: mux}

	var err error
	go func() {
		if err = srv.ListenAndServe(); err != nil {
			cancel()
			return
		}
	}()

	<-ctx.Done()

	err = srv.Shutdown(ctx)
	return err
}
