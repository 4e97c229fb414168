package main

import (
	"context"
	"testing"
	"time"

	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/incident"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/config"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/database"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/telemetry"
	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incidentsConfig(sink string) *config.Config {
	return &config.Config{
		Incidents: config.IncidentsConfig{Sink: sink, FlushIntervalMS: 10},
		Redis:     config.RedisConfig{Stream: "test:incidents"},
	}
}

func TestBuildIncidentLogger(t *testing.T) {
	metrics := telemetry.NewMetrics()

	t.Run("none", func(t *testing.T) {
		l, err := buildIncidentLogger(incidentsConfig("none"), nil, nil, nil, metrics)
		require.NoError(t, err)
		assert.IsType(t, incident.NopLogger{}, l)
	})

	t.Run("log is the default", func(t *testing.T) {
		l, err := buildIncidentLogger(incidentsConfig(""), nil, nil, nil, metrics)
		require.NoError(t, err)
		assert.IsType(t, &incident.AsyncLogger{}, l)
		require.NoError(t, l.Close())
	})

	t.Run("postgres without database fails", func(t *testing.T) {
		_, err := buildIncidentLogger(incidentsConfig("postgres"), nil, nil, nil, metrics)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database")
	})

	t.Run("redis without client fails", func(t *testing.T) {
		_, err := buildIncidentLogger(incidentsConfig("redis"), nil, nil, nil, metrics)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis")
	})

	t.Run("unknown sink fails", func(t *testing.T) {
		_, err := buildIncidentLogger(incidentsConfig("kafka"), nil, nil, nil, metrics)
		require.Error(t, err)
	})

	t.Run("redis writes the stream", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		l, err := buildIncidentLogger(incidentsConfig("REDIS"), nil, rdb, nil, metrics)
		require.NoError(t, err)

		l.Log(context.Background(), incident.Record{
			Category: "prompt_injection",
			Severity: incident.SeverityHardBlock,
			Outcome:  incident.OutcomeRejected,
		})
		require.NoError(t, l.Close())

		n, err := rdb.XLen(context.Background(), "test:incidents").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestBuildIncidentHandler(t *testing.T) {
	assert.Nil(t, buildIncidentHandler(nil, "token"))

	pool := (*database.Pool)(&pgxpool.Pool{})
	assert.Nil(t, buildIncidentHandler(pool, " "))
	assert.NotNil(t, buildIncidentHandler(pool, "token"))
}

func TestBuildIncidentLogger_FlushesOnInterval(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l, err := buildIncidentLogger(incidentsConfig("redis"), nil, rdb, nil, telemetry.NewMetrics())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	l.Log(context.Background(), incident.Record{Category: "non_travel_task"})

	assert.Eventually(t, func() bool {
		n, err := rdb.XLen(context.Background(), "test:incidents").Result()
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)
}
