package aws

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younsl/idlelb/internal/models"
)

func TestNewMetricWindow(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	w := NewMetricWindow(now, 45)

	assert.Equal(t, now, w.End)
	assert.Equal(t, time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, int32(60), w.Period)
	assert.Equal(t, "Minimum", w.Statistic)
}

func TestClassifyResult(t *testing.T) {
	tests := []struct {
		name   string
		result *cwtypes.MetricDataResult
		want   models.ActivityState
	}{
		{"nil result", nil, models.Inactive},
		{"no datapoints", &cwtypes.MetricDataResult{}, models.Inactive},
		{"all zero", &cwtypes.MetricDataResult{Values: []float64{0, 0, 0}}, models.Inactive},
		{"single healthy minute", &cwtypes.MetricDataResult{Values: []float64{0, 1, 0}}, models.Active},
		{"steady hosts", &cwtypes.MetricDataResult{Values: []float64{2, 2, 3}}, models.Active},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyResult(tt.result))
		})
	}
}

func TestGetMetricStats_BuildsQuery(t *testing.T) {
	cw := &fakeCloudWatch{key: "LoadBalancerName", values: map[string][]float64{"web": {1}}}
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	client := NewMetricClient(cw, nil)
	client.now = func() time.Time { return now }

	result, err := client.GetMetricStats(context.Background(), Metric{
		Namespace:  namespaceELB,
		Name:       metricHealthyHostCount,
		Dimensions: []cwtypes.Dimension{dimension("LoadBalancerName", "web")},
	}, 7)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []float64{1}, result.Values)

	require.Len(t, cw.requests, 1)
	req := cw.requests[0]
	assert.Equal(t, now.AddDate(0, 0, -7), aws.ToTime(req.StartTime))
	assert.Equal(t, now, aws.ToTime(req.EndTime))
	require.Len(t, req.MetricDataQueries, 1)
	q := req.MetricDataQueries[0]
	assert.Equal(t, "m1", aws.ToString(q.Id))
	assert.Equal(t, int32(60), aws.ToInt32(q.MetricStat.Period))
	assert.Equal(t, "Minimum", aws.ToString(q.MetricStat.Stat))
	assert.Equal(t, "AWS/ELB", aws.ToString(q.MetricStat.Metric.Namespace))
	assert.Equal(t, "HealthyHostCount", aws.ToString(q.MetricStat.Metric.MetricName))
}

func TestGetMetricStats_ErrorAndEmptyReturnNil(t *testing.T) {
	metric := Metric{
		Namespace:  namespaceELB,
		Name:       metricHealthyHostCount,
		Dimensions: []cwtypes.Dimension{dimension("LoadBalancerName", "web")},
	}

	failing := NewMetricClient(&fakeCloudWatch{key: "LoadBalancerName", failFor: map[string]bool{"web": true}}, nil)
	result, err := failing.GetMetricStats(context.Background(), metric, 1)
	assert.NoError(t, err, "query errors read as no signal")
	assert.Nil(t, result)

	empty := NewMetricClient(&fakeCloudWatch{key: "LoadBalancerName", empty: true}, nil)
	result, err = empty.GetMetricStats(context.Background(), metric, 1)
	assert.NoError(t, err)
	assert.Nil(t, result)
}
