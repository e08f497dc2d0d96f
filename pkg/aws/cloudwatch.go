package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/rs/zerolog/log"

	"github.com/younsl/idlelb/internal/metrics"
	"github.com/younsl/idlelb/internal/models"
)

const (
	// CloudWatch metric used by both classifiers
	metricHealthyHostCount = "HealthyHostCount"

	metricQueryID   = "m1"
	metricPeriod    = 60 // seconds
	metricStatistic = "Minimum"
)

// MetricWindow is the time range and aggregation of one metric query
type MetricWindow struct {
	Start     time.Time
	End       time.Time
	Period    int32
	Statistic string
}

// NewMetricWindow returns the window [now-days, now]
func NewMetricWindow(now time.Time, days int) MetricWindow {
	return MetricWindow{
		Start:     now.AddDate(0, 0, -days),
		End:       now,
		Period:    metricPeriod,
		Statistic: metricStatistic,
	}
}

// Metric identifies one CloudWatch time series
type Metric struct {
	Namespace  string
	Name       string
	Dimensions []cwtypes.Dimension
}

// MetricClient issues single-metric GetMetricData queries
type MetricClient struct {
	api     CloudWatchAPI
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewMetricClient wraps a CloudWatch client. rec may be nil.
func NewMetricClient(api CloudWatchAPI, rec *metrics.Recorder) *MetricClient {
	return &MetricClient{api: api, metrics: rec, now: time.Now}
}

// GetMetricStats returns the first result of a query over the last days, or nil.
// Query errors are logged and read as no signal. Expired credentials are the
// exception and come back as a credential error.
func (c *MetricClient) GetMetricStats(ctx context.Context, m Metric, days int) (*cwtypes.MetricDataResult, error) {
	w := NewMetricWindow(c.now(), days)

	out, err := c.api.GetMetricData(ctx, &cloudwatch.GetMetricDataInput{
		StartTime: aws.Time(w.Start),
		EndTime:   aws.Time(w.End),
		MetricDataQueries: []cwtypes.MetricDataQuery{
			{
				Id: aws.String(metricQueryID),
				MetricStat: &cwtypes.MetricStat{
					Metric: &cwtypes.Metric{
						Namespace:  aws.String(m.Namespace),
						MetricName: aws.String(m.Name),
						Dimensions: m.Dimensions,
					},
					Period: aws.Int32(w.Period),
					Stat:   aws.String(w.Statistic),
				},
			},
		},
	})
	if err != nil {
		c.metrics.MetricQuery(metrics.QueryError)
		if errors.Is(err, ErrCredentialsExpired) {
			return nil, tagExpired(fmt.Errorf("metric query: %w", err))
		}
		log.Warn().
			Err(models.NewMetricQueryError(err)).
			Str("namespace", m.Namespace).
			Str("metric", m.Name).
			Interface("dimensions", dimensionMap(m.Dimensions)).
			Msg("metric query failed, treating as no signal")
		return nil, nil
	}
	if len(out.MetricDataResults) == 0 {
		c.metrics.MetricQuery(metrics.QueryEmpty)
		return nil, nil
	}

	c.metrics.MetricQuery(metrics.QueryOK)
	return &out.MetricDataResults[0], nil
}

// SumValues adds up every datapoint of a result. A nil result sums to zero.
func SumValues(r *cwtypes.MetricDataResult) float64 {
	if r == nil {
		return 0
	}
	var sum float64
	for _, v := range r.Values {
		sum += v
	}
	return sum
}

// ClassifyResult maps a metric result to an activity state
func ClassifyResult(r *cwtypes.MetricDataResult) models.ActivityState {
	if SumValues(r) > 0 {
		return models.Active
	}
	return models.Inactive
}

func dimension(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

func dimensionMap(dims []cwtypes.Dimension) map[string]string {
	out := make(map[string]string, len(dims))
	for _, d := range dims {
		out[aws.ToString(d.Name)] = aws.ToString(d.Value)
	}
	return out
}
