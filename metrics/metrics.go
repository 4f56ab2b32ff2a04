package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Intake and transfer counters, exported on /metrics.
var (
	RecordsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "admissions_records_ingested_total",
		Help: "Raw records received by the intake flow (form or import)",
	})
	RecordsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "admissions_records_accepted_total",
		Help: "Records that passed validation and batch allocation",
	})
	RecordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admissions_records_rejected_total",
		Help: "Records rejected by the intake flow, by reason",
	}, []string{"reason"}) // validation|no_batch|capacity|persistence

	TransfersValidated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "admissions_transfers_validated_total",
		Help: "Transfer requests that passed the compatibility gate",
	})
	TransfersRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "admissions_transfers_rejected_total",
		Help: "Transfer requests rejected at the compatibility gate",
	})

	BulkOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admissions_bulk_operations_total",
		Help: "Bulk runs by outcome",
	}, []string{"operation", "outcome"})
)
