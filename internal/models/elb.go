package models

import (
	"fmt"
	"strings"
)

// LoadBalancerKind distinguishes classic load balancers from target-group backed ones
type LoadBalancerKind string

const (
	// SingleStage is a classic ELB, addressed by name
	SingleStage LoadBalancerKind = "elb"
	// MultiStage is an ALB or NLB, addressed by ARN and backed by target groups
	MultiStage LoadBalancerKind = "elbv2"
)

// AllKinds lists every supported kind in scan order
var AllKinds = []LoadBalancerKind{SingleStage, MultiStage}

// ParseKind converts a config or flag value into a LoadBalancerKind
func ParseKind(s string) (LoadBalancerKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "elb", "classic":
		return SingleStage, nil
	case "elbv2", "alb", "nlb":
		return MultiStage, nil
	default:
		return "", fmt.Errorf("unknown load balancer kind %q", s)
	}
}

// IDHeader is the first CSV column name used for this kind
func (k LoadBalancerKind) IDHeader() string {
	if k == MultiStage {
		return "arn"
	}
	return "name"
}

// DisplayName is the human readable kind used in tables and spinners
func (k LoadBalancerKind) DisplayName() string {
	switch k {
	case SingleStage:
		return "Classic ELB"
	case MultiStage:
		return "ELBv2 (ALB/NLB)"
	default:
		return string(k)
	}
}

// ActivityState is the traffic classification of a load balancer
type ActivityState int

const (
	// Inactive is the zero value so that a missing signal is never read as traffic
	Inactive ActivityState = iota
	Active
)

func (s ActivityState) String() string {
	if s == Active {
		return "Active"
	}
	return "Inactive"
}

// LoadBalancer is one listed load balancer awaiting classification
type LoadBalancer struct {
	ID      string // name for classic, ARN for v2
	Name    string
	Kind    LoadBalancerKind
	Region  string
	VpcID   string
	DNSName string
}

// TargetGroupRef identifies a target group attached to a multi-stage load balancer
type TargetGroupRef struct {
	ARN     string
	ShortID string // targetgroup/<name>/<id>, the CloudWatch dimension value
}

// ResourceRecord holds the classification result for one load balancer
type ResourceRecord struct {
	ID          string
	Kind        LoadBalancerKind
	Region      string
	VpcID       string
	State       ActivityState
	MonthlyCost *float64 // Estimated monthly cost, only set when pricing is enabled
}

// NewResourceRecord builds the record for a classified load balancer
func NewResourceRecord(lb LoadBalancer, state ActivityState) ResourceRecord {
	return ResourceRecord{
		ID:     lb.ID,
		Kind:   lb.Kind,
		Region: lb.Region,
		VpcID:  lb.VpcID,
		State:  state,
	}
}

// InactiveRecords returns the records classified as Inactive, preserving order
func InactiveRecords(records []ResourceRecord) []ResourceRecord {
	var inactive []ResourceRecord
	for _, r := range records {
		if r.State == Inactive {
			inactive = append(inactive, r)
		}
	}
	return inactive
}

// RecordsOfKind returns the records of a single kind, preserving order
func RecordsOfKind(records []ResourceRecord, kind LoadBalancerKind) []ResourceRecord {
	var out []ResourceRecord
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// DeletionOutcome is the result of a single delete call
type DeletionOutcome struct {
	ID        string
	Kind      LoadBalancerKind
	Region    string
	Succeeded bool
	Err       error
}
