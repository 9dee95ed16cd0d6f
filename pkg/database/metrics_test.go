package database

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolStatsCollector_Collect(t *testing.T) {
	c := NewPoolStatsCollector(func() PoolStats {
		return PoolStats{Acquired: 2, Idle: 3, Total: 5, Max: 10, AcquireCount: 42, EmptyAcquire: 1}
	}, "storefront")

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	expected := `
# HELP db_pool_acquired_connections Number of currently acquired connections
# TYPE db_pool_acquired_connections gauge
db_pool_acquired_connections{service="storefront"} 2
# HELP db_pool_acquire_count_total Total number of connection acquires
# TYPE db_pool_acquire_count_total counter
db_pool_acquire_count_total{service="storefront"} 42
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"db_pool_acquired_connections", "db_pool_acquire_count_total")
	assert.NoError(t, err)
	assert.Equal(t, 6, testutil.CollectAndCount(c))
}
