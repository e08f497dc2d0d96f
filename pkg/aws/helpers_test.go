package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing/types"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
)

func classicDescription(name, region, vpc string) elbtypes.LoadBalancerDescription {
	return elbtypes.LoadBalancerDescription{
		LoadBalancerName: aws.String(name),
		DNSName:          aws.String(name + "-1234567890." + region + ".elb.amazonaws.com"),
		VPCId:            aws.String(vpc),
	}
}

func v2LoadBalancer(arn, name, vpc string) elbv2types.LoadBalancer {
	return elbv2types.LoadBalancer{
		LoadBalancerArn:  aws.String(arn),
		LoadBalancerName: aws.String(name),
		VpcId:            aws.String(vpc),
	}
}

func elbv2TargetGroup(arn string) elbv2types.TargetGroup {
	return elbv2types.TargetGroup{TargetGroupArn: aws.String(arn)}
}

func ec2Vpc(id string) ec2types.Vpc {
	return ec2types.Vpc{VpcId: aws.String(id)}
}
