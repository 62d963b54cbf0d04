package sessionstore

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agustogpt/chatstore/pkg/objectstore"
	"github.com/agustogpt/chatstore/pkg/recordstore"
)

const (
	resultSuccess  = "success"
	resultNotFound = "not_found"
	resultDisabled = "disabled"
	resultInvalid  = "invalid"
	resultError    = "error"
)

const (
	operationSave   = "save"
	operationLoad   = "load"
	operationList   = "list"
	operationDelete = "delete"
	operationLog    = "log_query"
)

var (
	operationsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatstore_operations_total",
		Help: "Chat persistence operations by result",
	}, []string{"operation", "result"})

	operationMillisMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chatstore_operation_millis",
		Help:    "Milliseconds spent in chat persistence operations",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	}, []string{"operation"})
)

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, ErrNotConfigured):
		return resultDisabled
	case errors.Is(err, objectstore.ErrNotFound), errors.Is(err, recordstore.ErrNotFound):
		return resultNotFound
	case errors.Is(err, ErrInvalidKey), errors.Is(err, ErrTooLarge):
		return resultInvalid
	default:
		return resultError
	}
}

func observe(operation string, start time.Time, err error) {
	operationsMetric.WithLabelValues(operation, resultOf(err)).Inc()
	operationMillisMetric.WithLabelValues(operation).Observe(float64(time.Since(start).Milliseconds()))
}
