package awsops

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"jobportal-ops/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// EC2API is the slice of the EC2 client these operations touch.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeInstanceStatus(ctx context.Context, params *ec2.DescribeInstanceStatusInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error)
}

// MetadataAPI is the IMDSv2 surface used for instance self-inspection.
type MetadataAPI interface {
	GetMetadata(ctx context.Context, params *imds.GetMetadataInput, optFns ...func(*imds.Options)) (*imds.GetMetadataOutput, error)
}

// EC2Ops wraps instance listing and inspection.
type EC2Ops struct {
	api  EC2API
	meta MetadataAPI
	cfg  config.Config
	log  zerolog.Logger
	out  io.Writer
}

func NewEC2Ops(api EC2API, meta MetadataAPI, cfg config.Config, log zerolog.Logger) *EC2Ops {
	return &EC2Ops{api: api, meta: meta, cfg: cfg, log: log, out: os.Stdout}
}

// SetOutput redirects the printed step output, used by tests.
func (o *EC2Ops) SetOutput(w io.Writer) { o.out = w }

// InstanceSummary is the per-instance view the listings print.
type InstanceSummary struct {
	InstanceID       string `json:"instance_id"`
	Name             string `json:"name"`
	InstanceType     string `json:"instance_type"`
	State            string `json:"state"`
	LaunchTime       string `json:"launch_time"`
	PrivateIP        string `json:"private_ip"`
	PublicIP         string `json:"public_ip"`
	AvailabilityZone string `json:"availability_zone"`
	VpcID            string `json:"vpc_id"`
	SubnetID         string `json:"subnet_id"`
}

// ListInstances prints and returns instances, paginating through all
// reservations. An empty state lists everything; otherwise the listing
// is filtered server-side, e.g. "running".
func (o *EC2Ops) ListInstances(ctx context.Context, state string) ([]InstanceSummary, error) {
	input := &ec2.DescribeInstancesInput{}
	if state != "" {
		input.Filters = []ec2types.Filter{
			{Name: aws.String("instance-state-name"), Values: []string{state}},
		}
	}

	paginator := ec2.NewDescribeInstancesPaginator(o.api, input)

	var instances []InstanceSummary
	if state == "" {
		fmt.Fprintln(o.out, "All EC2 instances:")
	} else {
		fmt.Fprintf(o.out, "EC2 instances in state %q:\n", state)
	}

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe instances: %w", err)
		}
		for _, res := range page.Reservations {
			for _, inst := range res.Instances {
				s := summarize(inst)
				instances = append(instances, s)
				fmt.Fprintf(o.out, "  - %s  %s (%s, %s, az: %s, private: %s, public: %s)\n",
					s.InstanceID, s.Name, s.InstanceType, s.State,
					s.AvailabilityZone, s.PrivateIP, s.PublicIP)
			}
		}
	}

	if len(instances) == 0 {
		fmt.Fprintln(o.out, "  no instances found")
	} else {
		fmt.Fprintf(o.out, "total: %d instance(s)\n", len(instances))
	}
	return instances, nil
}

// FilterByTag lists instances carrying the given tag pair.
func (o *EC2Ops) FilterByTag(ctx context.Context, key, value string) ([]InstanceSummary, error) {
	paginator := ec2.NewDescribeInstancesPaginator(o.api, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("tag:" + key), Values: []string{value}},
		},
	})

	var instances []InstanceSummary
	fmt.Fprintf(o.out, "Instances with tag %s=%s:\n", key, value)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe instances by tag %s=%s: %w", key, value, err)
		}
		for _, res := range page.Reservations {
			for _, inst := range res.Instances {
				s := summarize(inst)
				instances = append(instances, s)
				fmt.Fprintf(o.out, "  - %s (%s)\n", s.InstanceID, s.State)
			}
		}
	}
	if len(instances) == 0 {
		fmt.Fprintln(o.out, "  no matching instances found")
	}
	return instances, nil
}

// InstanceDetails is the full single-instance view.
type InstanceDetails struct {
	InstanceSummary
	PrivateDNS     string            `json:"private_dns"`
	PublicDNS      string            `json:"public_dns"`
	SecurityGroups []string          `json:"security_groups"`
	AmiID          string            `json:"ami_id"`
	KeyName        string            `json:"key_name"`
	Architecture   string            `json:"architecture"`
	RootDeviceType string            `json:"root_device_type"`
	Tags           map[string]string `json:"tags"`
}

// GetInstanceDetails fetches one instance and prints it as indented
// JSON like the management console export.
func (o *EC2Ops) GetInstanceDetails(ctx context.Context, instanceID string) (*InstanceDetails, error) {
	resp, err := o.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return nil, fmt.Errorf("describe instance %q: %w", instanceID, err)
	}
	if len(resp.Reservations) == 0 || len(resp.Reservations[0].Instances) == 0 {
		return nil, fmt.Errorf("instance %q not found", instanceID)
	}

	inst := resp.Reservations[0].Instances[0]
	details := &InstanceDetails{
		InstanceSummary: summarize(inst),
		PrivateDNS:      aws.ToString(inst.PrivateDnsName),
		PublicDNS:       aws.ToString(inst.PublicDnsName),
		AmiID:           aws.ToString(inst.ImageId),
		KeyName:         aws.ToString(inst.KeyName),
		Architecture:    string(inst.Architecture),
		RootDeviceType:  string(inst.RootDeviceType),
		Tags:            map[string]string{},
	}
	for _, sg := range inst.SecurityGroups {
		details.SecurityGroups = append(details.SecurityGroups, aws.ToString(sg.GroupName))
	}
	for _, t := range inst.Tags {
		details.Tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}

	fmt.Fprintf(o.out, "Instance details: %s\n", instanceID)
	if b, err := json.MarshalIndent(details, "", "  "); err == nil {
		fmt.Fprintln(o.out, string(b))
	}
	return details, nil
}

// InstanceStatus is the health-check view of one instance.
type InstanceStatus struct {
	InstanceID       string `json:"instance_id"`
	InstanceState    string `json:"instance_state"`
	SystemStatus     string `json:"system_status"`
	InstanceStatus   string `json:"instance_status"`
	AvailabilityZone string `json:"availability_zone"`
}

// GetInstanceStatus returns the status checks for an instance, or nil
// when no status is available (stopped instances report nothing).
func (o *EC2Ops) GetInstanceStatus(ctx context.Context, instanceID string) (*InstanceStatus, error) {
	resp, err := o.api.DescribeInstanceStatus(ctx, &ec2.DescribeInstanceStatusInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return nil, fmt.Errorf("describe status of %q: %w", instanceID, err)
	}
	if len(resp.InstanceStatuses) == 0 {
		fmt.Fprintf(o.out, "no status available for %q (instance may be stopped)\n", instanceID)
		return nil, nil
	}

	st := resp.InstanceStatuses[0]
	status := &InstanceStatus{
		InstanceID:       aws.ToString(st.InstanceId),
		AvailabilityZone: aws.ToString(st.AvailabilityZone),
	}
	if st.InstanceState != nil {
		status.InstanceState = string(st.InstanceState.Name)
	}
	if st.SystemStatus != nil {
		status.SystemStatus = string(st.SystemStatus.Status)
	}
	if st.InstanceStatus != nil {
		status.InstanceStatus = string(st.InstanceStatus.Status)
	}

	fmt.Fprintf(o.out, "Instance status: %s\n", instanceID)
	fmt.Fprintf(o.out, "  state: %s\n", status.InstanceState)
	fmt.Fprintf(o.out, "  system status: %s\n", status.SystemStatus)
	fmt.Fprintf(o.out, "  instance status: %s\n", status.InstanceStatus)
	fmt.Fprintf(o.out, "  az: %s\n", status.AvailabilityZone)
	return status, nil
}

// metadataPaths are the IMDS endpoints the metadata dump walks.
var metadataPaths = []string{
	"instance-id",
	"instance-type",
	"ami-id",
	"hostname",
	"local-hostname",
	"local-ipv4",
	"public-ipv4",
	"public-hostname",
	"placement/availability-zone",
	"placement/region",
	"security-groups",
	"mac",
}

// mockMetadata stands in when the metadata service is unreachable,
// which is the normal case outside EC2.
var mockMetadata = map[string]string{
	"instance-id":                 "i-0123456789abcdef0",
	"instance-type":               "t2.micro",
	"ami-id":                      "ami-0123456789abcdef0",
	"local-ipv4":                  "10.0.1.100",
	"placement/availability-zone": "us-east-1a",
	"placement/region":            "us-east-1",
}

// GetInstanceMetadata reads the IMDSv2 endpoints of the instance the
// process runs on. When the service cannot be reached at all it falls
// back to fixed mock values so the demo still has output to show.
// Paths that fail individually are skipped.
func (o *EC2Ops) GetInstanceMetadata(ctx context.Context) map[string]string {
	metadata := make(map[string]string, len(metadataPaths))

	for _, path := range metadataPaths {
		resp, err := o.meta.GetMetadata(ctx, &imds.GetMetadataInput{Path: path})
		if err != nil {
			continue
		}
		b, err := io.ReadAll(resp.Content)
		resp.Content.Close()
		if err != nil {
			continue
		}
		metadata[path] = string(b)
	}

	if len(metadata) == 0 {
		o.log.Info().Msg("metadata service not available, using mock values")
		fmt.Fprintln(o.out, "EC2 metadata service not available (normal outside EC2), mock values:")
		for k, v := range mockMetadata {
			fmt.Fprintf(o.out, "  %s: %s\n", k, v)
		}
		return mockMetadata
	}

	fmt.Fprintln(o.out, "EC2 instance metadata:")
	for _, path := range metadataPaths {
		if v, ok := metadata[path]; ok {
			fmt.Fprintf(o.out, "  %s: %s\n", path, v)
		}
	}
	return metadata
}

// summarize flattens an SDK instance into the listing view, resolving
// the Name tag.
func summarize(inst ec2types.Instance) InstanceSummary {
	s := InstanceSummary{
		InstanceID:   aws.ToString(inst.InstanceId),
		Name:         "N/A",
		InstanceType: string(inst.InstanceType),
		PrivateIP:    aws.ToString(inst.PrivateIpAddress),
		PublicIP:     aws.ToString(inst.PublicIpAddress),
		VpcID:        aws.ToString(inst.VpcId),
		SubnetID:     aws.ToString(inst.SubnetId),
	}
	if inst.State != nil {
		s.State = string(inst.State.Name)
	}
	if inst.LaunchTime != nil {
		s.LaunchTime = inst.LaunchTime.Format(time.RFC3339)
	}
	if inst.Placement != nil {
		s.AvailabilityZone = aws.ToString(inst.Placement.AvailabilityZone)
	}
	for _, t := range inst.Tags {
		if aws.ToString(t.Key) == "Name" {
			s.Name = aws.ToString(t.Value)
			break
		}
	}
	return s
}
