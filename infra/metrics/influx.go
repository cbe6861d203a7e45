package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/pcouderc/worksched/core/metrics"
	"github.com/pcouderc/worksched/infra/logger"
)

// InfluxSink writes workspace activity and the per-day capacity series to
// an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClientWithOptions(url, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance first and returns
// a NopSink when the health check fails, so a missing dashboard store
// never blocks the engine.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordMutation writes one point per mutation.
func (s *InfluxSink) RecordMutation(rec coremetrics.MutationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("workspace_mutation").
		AddTag("scope", rec.Scope).
		AddTag("op", rec.Op).
		AddTag("mode", rec.Mode).
		AddField("count", 1).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordApply writes the outcome of an overlay replay.
func (s *InfluxSink) RecordApply(rec coremetrics.ApplyRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("workspace_apply").
		AddTag("scope", rec.Scope).
		AddTag("failed", strconv.FormatBool(rec.Failed)).
		AddField("updates", rec.Updates).
		AddField("creates", rec.Creates).
		AddField("deletes", rec.Deletes).
		AddField("duration_ms", rec.Duration.Milliseconds()).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCapacity writes the full per-day load series, one point per day,
// timestamped at the schedule date so dashboards can chart the horizon.
func (s *InfluxSink) RecordCapacity(points []coremetrics.CapacityPoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, cp := range points {
		p := write.NewPointWithMeasurement("workspace_capacity").
			AddTag("scope", cp.Scope).
			AddTag("band", cp.Band).
			AddField("hours", cp.Hours).
			SetTime(cp.Date)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
