package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// 数据库连接指标
	// ============================================
	DBConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nft_db_connection_status",
		Help: "Database connection status (1=healthy, 0=unhealthy)",
	})

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nft_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type"},
	)

	// ============================================
	// NATS 连接和消息指标
	// ============================================
	NATSConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nft_nats_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	NATSMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nft_nats_messages_published_total",
			Help: "Total number of NATS messages published",
		},
		[]string{"subject", "status"},
	)

	// ============================================
	// Minting
	// ============================================
	MintBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nft_mint_batches_total",
			Help: "Mint batches by outcome (completed, rejected)",
		},
		[]string{"outcome"},
	)

	MintJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nft_mint_jobs_total",
			Help: "Terminal mint jobs by state and error kind",
		},
		[]string{"state", "error_kind"},
	)

	MintJobsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nft_mint_jobs_in_flight",
		Help: "Mint jobs not yet in a terminal state",
	})

	ContentPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nft_content_publish_duration_seconds",
			Help:    "Content store publish latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	GasEstimate = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nft_mint_gas_estimate",
		Help:    "Gas estimated for mint calls",
		Buckets: prometheus.ExponentialBuckets(50000, 1.5, 10),
	})

	ConfirmationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nft_tx_confirmation_duration_seconds",
		Help:    "Time from submission to receipt",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	})

	PacingWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nft_pacing_wait_seconds",
		Help:    "Time spent waiting on the submission pacing policy",
		Buckets: prometheus.DefBuckets,
	})

	// ============================================
	// Gallery
	// ============================================
	GalleryScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nft_gallery_scans_total",
			Help: "Gallery scans by discovery path",
		},
		[]string{"path"},
	)

	GalleryProbeAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nft_gallery_probe_attempts",
		Help:    "Identifiers probed per probe-path scan",
		Buckets: prometheus.ExponentialBuckets(1, 2, 11),
	})

	GalleryRecordsFound = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nft_gallery_records_found",
		Help: "Records returned by the last gallery scan",
	})

	HistoryCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nft_history_cache_total",
			Help: "Transfer history cache lookups (hit, miss, backoff)",
		},
		[]string{"result"},
	)
)
