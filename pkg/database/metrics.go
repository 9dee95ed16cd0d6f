package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStats is a point-in-time snapshot of connection pool counters.
type PoolStats struct {
	Acquired     int32
	Idle         int32
	Total        int32
	Max          int32
	AcquireCount int64
	EmptyAcquire int64
}

// PgxPoolStats adapts a pgx pool to the snapshot function the collector reads.
func PgxPoolStats(pool *pgxpool.Pool) func() PoolStats {
	return func() PoolStats {
		s := pool.Stat()
		return PoolStats{
			Acquired:     s.AcquiredConns(),
			Idle:         s.IdleConns(),
			Total:        s.TotalConns(),
			Max:          s.MaxConns(),
			AcquireCount: s.AcquireCount(),
			EmptyAcquire: s.EmptyAcquireCount(),
		}
	}
}

// PoolStatsCollector exports connection pool statistics as Prometheus metrics.
type PoolStatsCollector struct {
	stats   func() PoolStats
	service string

	acquired     *prometheus.Desc
	idle         *prometheus.Desc
	total        *prometheus.Desc
	max          *prometheus.Desc
	acquireCount *prometheus.Desc
	emptyAcquire *prometheus.Desc
}

func NewPoolStatsCollector(stats func() PoolStats, service string) *PoolStatsCollector {
	labels := []string{"service"}
	return &PoolStatsCollector{
		stats:        stats,
		service:      service,
		acquired:     prometheus.NewDesc("db_pool_acquired_connections", "Number of currently acquired connections", labels, nil),
		idle:         prometheus.NewDesc("db_pool_idle_connections", "Number of currently idle connections", labels, nil),
		total:        prometheus.NewDesc("db_pool_total_connections", "Total number of connections in the pool", labels, nil),
		max:          prometheus.NewDesc("db_pool_max_connections", "Maximum number of connections allowed", labels, nil),
		acquireCount: prometheus.NewDesc("db_pool_acquire_count_total", "Total number of connection acquires", labels, nil),
		emptyAcquire: prometheus.NewDesc("db_pool_empty_acquire_count_total", "Acquires that had to wait for a connection", labels, nil),
	}
}

func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
	ch <- c.max
	ch <- c.acquireCount
	ch <- c.emptyAcquire
}

func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()

	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(s.Acquired), c.service)
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.Idle), c.service)
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.Total), c.service)
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(s.Max), c.service)
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(s.AcquireCount), c.service)
	ch <- prometheus.MustNewConstMetric(c.emptyAcquire, prometheus.CounterValue, float64(s.EmptyAcquire), c.service)
}

// RegisterPoolMetrics registers a collector for pool with reg. Registering the
// same service twice is a no-op.
func RegisterPoolMetrics(reg prometheus.Registerer, pool *pgxpool.Pool, service string) error {
	err := reg.Register(NewPoolStatsCollector(PgxPoolStats(pool), service))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}
