package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// MissingVPCs returns the IDs from ids that DescribeVpcs does not know about.
// A vpc-id filter is used so unknown IDs do not fail the call.
func MissingVPCs(ctx context.Context, client EC2API, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found := make(map[string]bool, len(ids))
	paginator := ec2.NewDescribeVpcsPaginator(client, &ec2.DescribeVpcsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("vpc-id"), Values: ids},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error describing VPCs: %w", err)
		}
		for _, vpc := range page.Vpcs {
			found[aws.ToString(vpc.VpcId)] = true
		}
	}

	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
