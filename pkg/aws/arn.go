package aws

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
)

const (
	// AWS CloudWatch Namespaces
	namespaceELB = "AWS/ELB"
	namespaceALB = "AWS/ApplicationELB"
	namespaceNLB = "AWS/NetworkELB"

	loadBalancerMarker = "loadbalancer/"
)

// NameFromIdentifier returns the segment after the last ":" of a name or ARN
func NameFromIdentifier(id string) string {
	if i := strings.LastIndex(id, ":"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// LoadBalancerIDFromARN returns the "<app|net>/<name>/<id>" part of a v2 load balancer ARN,
// which is the value of the LoadBalancer CloudWatch dimension
func LoadBalancerIDFromARN(lbARN string) (string, bool) {
	i := strings.Index(lbARN, loadBalancerMarker)
	if i < 0 {
		return "", false
	}
	return lbARN[i+len(loadBalancerMarker):], true
}

// TargetGroupIDFromARN returns the "targetgroup/<name>/<id>" part of a target group ARN
func TargetGroupIDFromARN(tgARN string) string {
	return NameFromIdentifier(tgARN)
}

// NamespaceForARN picks the CloudWatch namespace from the load balancer type marker.
// Gateway and unknown types have no namespace.
func NamespaceForARN(lbARN string) (string, bool) {
	switch {
	case strings.Contains(lbARN, loadBalancerMarker+"app/"):
		return namespaceALB, true
	case strings.Contains(lbARN, loadBalancerMarker+"net/"):
		return namespaceNLB, true
	default:
		return "", false
	}
}

// RegionFromARN returns the region field of an ARN, or "" when it cannot be parsed
func RegionFromARN(s string) string {
	parsed, err := arn.Parse(s)
	if err != nil {
		return ""
	}
	return parsed.Region
}

// AccountFromARN returns the account field of an ARN
func AccountFromARN(s string) (string, error) {
	parsed, err := arn.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.AccountID, nil
}

// RegionFromDNSName reads the region out of a classic DNS name such as
// my-lb-123.us-east-1.elb.amazonaws.com
func RegionFromDNSName(dns string) string {
	parts := strings.Split(dns, ".")
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
