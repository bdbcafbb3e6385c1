package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollectorWithRegisterer_SeparateRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		NewCollectorWithRegisterer("a", prometheus.NewRegistry())
		NewCollectorWithRegisterer("a", prometheus.NewRegistry())
	})
}

func TestRecordCacheLookup(t *testing.T) {
	c := NewTestCollector()

	c.RecordCacheLookup(false)
	c.RecordCacheLookup(true)
	c.RecordCacheLookup(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.GeneratorCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.GeneratorCacheTotal.WithLabelValues("miss")))
}

func TestRecordHelpers(t *testing.T) {
	c := NewTestCollector()

	c.RecordPlaceholder("co2", "empty_series")
	c.RecordExport("temperature", "csv")
	c.RecordPublish("success")
	c.RecordAPIError("validation_error", "/api/dashboard")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.PlaceholdersTotal.WithLabelValues("co2", "empty_series")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ExportsTotal.WithLabelValues("temperature", "csv")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.WarehousePublishTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.APIErrorsTotal.WithLabelValues("validation_error", "/api/dashboard")))
}

func TestUpdateDBConnectionPool(t *testing.T) {
	c := NewTestCollector()
	c.UpdateDBConnectionPool(2, 3, 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("in_use")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("idle")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("total")))
}

func TestTimer(t *testing.T) {
	c := NewTestCollector()
	timer := c.NewTimer(c.GenerationDuration)
	time.Sleep(time.Millisecond)

	assert.GreaterOrEqual(t, timer.ObserveDuration(), time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(c.GenerationDuration))
}
