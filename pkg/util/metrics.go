package util

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
)

func TimeOperationMicroseconds(op func()) int64 {
	start := time.Now()
	op()
	return time.Since(start).Microseconds()
}

// TimeStage runs op and writes its duration and output size as a point named
// measurement. The point is written even if op fails.
func TimeStage(writeAPI api.WriteAPI, measurement string, tags map[string]string, op func() (int, error)) error {
	var (
		samples int
		err     error
	)
	start := time.Now()
	duration := TimeOperationMicroseconds(func() {
		samples, err = op()
	})

	fields := map[string]interface{}{
		"duration_us": duration,
		"samples":     samples,
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	writeAPI.WritePoint(influxdb2.NewPoint(measurement, tags, fields, start))
	return err
}
