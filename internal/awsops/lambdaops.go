package awsops

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"jobportal-ops/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// LambdaAPI is the slice of the Lambda client these operations touch.
type LambdaAPI interface {
	ListFunctions(ctx context.Context, params *lambda.ListFunctionsInput, optFns ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error)
	GetFunction(ctx context.Context, params *lambda.GetFunctionInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error)
	GetFunctionConfiguration(ctx context.Context, params *lambda.GetFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionConfigurationOutput, error)
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LogsAPI is the CloudWatch Logs surface used to tail function logs.
type LogsAPI interface {
	DescribeLogStreams(ctx context.Context, params *cloudwatchlogs.DescribeLogStreamsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogStreamsOutput, error)
	GetLogEvents(ctx context.Context, params *cloudwatchlogs.GetLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error)
}

// LambdaOps wraps function inspection, invocation and log retrieval.
type LambdaOps struct {
	api  LambdaAPI
	logs LogsAPI
	cfg  config.Config
	log  zerolog.Logger
	out  io.Writer
}

func NewLambdaOps(api LambdaAPI, logs LogsAPI, cfg config.Config, log zerolog.Logger) *LambdaOps {
	return &LambdaOps{api: api, logs: logs, cfg: cfg, log: log, out: os.Stdout}
}

// SetOutput redirects the printed step output, used by tests.
func (o *LambdaOps) SetOutput(w io.Writer) { o.out = w }

// FunctionSummary is the per-function view the listing prints.
type FunctionSummary struct {
	Name         string `json:"name"`
	Runtime      string `json:"runtime"`
	MemoryMB     int32  `json:"memory_mb"`
	TimeoutSec   int32  `json:"timeout_sec"`
	LastModified string `json:"last_modified"`
	Description  string `json:"description"`
}

// ListFunctions prints and returns every function in the account,
// paginating through the full listing.
func (o *LambdaOps) ListFunctions(ctx context.Context) ([]FunctionSummary, error) {
	paginator := lambda.NewListFunctionsPaginator(o.api, &lambda.ListFunctionsInput{})

	var functions []FunctionSummary
	fmt.Fprintln(o.out, "Lambda functions:")
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list functions: %w", err)
		}
		for _, fn := range page.Functions {
			s := FunctionSummary{
				Name:         aws.ToString(fn.FunctionName),
				Runtime:      string(fn.Runtime),
				MemoryMB:     aws.ToInt32(fn.MemorySize),
				TimeoutSec:   aws.ToInt32(fn.Timeout),
				LastModified: aws.ToString(fn.LastModified),
				Description:  aws.ToString(fn.Description),
			}
			functions = append(functions, s)
			fmt.Fprintf(o.out, "  - %s (runtime: %s, memory: %d MB, timeout: %ds)\n",
				s.Name, s.Runtime, s.MemoryMB, s.TimeoutSec)
		}
	}

	if len(functions) == 0 {
		fmt.Fprintln(o.out, "  no functions found")
	} else {
		fmt.Fprintf(o.out, "total: %d function(s)\n", len(functions))
	}
	return functions, nil
}

// FunctionDetails is the full single-function view.
type FunctionDetails struct {
	Name          string   `json:"name"`
	Arn           string   `json:"arn"`
	Runtime       string   `json:"runtime"`
	Role          string   `json:"role"`
	Handler       string   `json:"handler"`
	MemoryMB      int32    `json:"memory_mb"`
	TimeoutSec    int32    `json:"timeout_sec"`
	CodeSize      int64    `json:"code_size"`
	State         string   `json:"state"`
	Architectures []string `json:"architectures"`
	LastModified  string   `json:"last_modified"`
}

// GetFunctionDetails fetches a function's configuration. A missing
// function is an error the caller can report.
func (o *LambdaOps) GetFunctionDetails(ctx context.Context, functionName string) (*FunctionDetails, error) {
	resp, err := o.api.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(functionName),
	})
	if err != nil {
		return nil, fmt.Errorf("get function %q: %w", functionName, err)
	}

	fc := resp.Configuration
	details := &FunctionDetails{
		Name:         aws.ToString(fc.FunctionName),
		Arn:          aws.ToString(fc.FunctionArn),
		Runtime:      string(fc.Runtime),
		Role:         aws.ToString(fc.Role),
		Handler:      aws.ToString(fc.Handler),
		MemoryMB:     aws.ToInt32(fc.MemorySize),
		TimeoutSec:   aws.ToInt32(fc.Timeout),
		CodeSize:     fc.CodeSize,
		State:        string(fc.State),
		LastModified: aws.ToString(fc.LastModified),
	}
	for _, a := range fc.Architectures {
		details.Architectures = append(details.Architectures, string(a))
	}

	fmt.Fprintf(o.out, "Lambda function details: %s\n", functionName)
	fmt.Fprintf(o.out, "  arn: %s\n", details.Arn)
	fmt.Fprintf(o.out, "  runtime: %s\n", details.Runtime)
	fmt.Fprintf(o.out, "  handler: %s\n", details.Handler)
	fmt.Fprintf(o.out, "  memory: %d MB\n", details.MemoryMB)
	fmt.Fprintf(o.out, "  timeout: %d seconds\n", details.TimeoutSec)
	fmt.Fprintf(o.out, "  code size: %s\n", humanize.IBytes(uint64(details.CodeSize)))
	fmt.Fprintf(o.out, "  state: %s\n", details.State)
	fmt.Fprintf(o.out, "  role: %s\n", details.Role)
	fmt.Fprintf(o.out, "  last modified: %s\n", details.LastModified)
	return details, nil
}

// FunctionConfig is the runtime configuration of a function.
type FunctionConfig struct {
	Environment map[string]string `json:"environment"`
	InVpc       bool              `json:"in_vpc"`
	TracingMode string            `json:"tracing_mode"`
	Layers      []string          `json:"layers"`
}

// GetFunctionConfig returns environment variables, VPC placement,
// tracing mode and layers.
func (o *LambdaOps) GetFunctionConfig(ctx context.Context, functionName string) (*FunctionConfig, error) {
	resp, err := o.api.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{
		FunctionName: aws.String(functionName),
	})
	if err != nil {
		return nil, fmt.Errorf("get configuration of %q: %w", functionName, err)
	}

	cfg := &FunctionConfig{
		Environment: map[string]string{},
		TracingMode: "PassThrough",
	}
	if resp.Environment != nil {
		cfg.Environment = resp.Environment.Variables
	}
	if resp.VpcConfig != nil && aws.ToString(resp.VpcConfig.VpcId) != "" {
		cfg.InVpc = true
	}
	if resp.TracingConfig != nil && resp.TracingConfig.Mode != "" {
		cfg.TracingMode = string(resp.TracingConfig.Mode)
	}
	for _, l := range resp.Layers {
		cfg.Layers = append(cfg.Layers, aws.ToString(l.Arn))
	}

	fmt.Fprintf(o.out, "Function configuration: %s\n", functionName)
	fmt.Fprintln(o.out, "  environment variables:")
	if len(cfg.Environment) == 0 {
		fmt.Fprintln(o.out, "    none configured")
	}
	for k, v := range cfg.Environment {
		fmt.Fprintf(o.out, "    %s: %s\n", k, v)
	}
	fmt.Fprintf(o.out, "  vpc: %v\n", cfg.InVpc)
	fmt.Fprintf(o.out, "  tracing: %s\n", cfg.TracingMode)
	fmt.Fprintf(o.out, "  layers: %d layer(s)\n", len(cfg.Layers))
	return cfg, nil
}

// InvokeResult captures one invocation's outcome including the decoded
// response payload.
type InvokeResult struct {
	StatusCode      int32           `json:"status_code"`
	ExecutedVersion string          `json:"executed_version"`
	FunctionError   string          `json:"function_error,omitempty"`
	Response        json.RawMessage `json:"response,omitempty"`
}

// Invoke calls a function. A nil payload falls back to the sample
// upload event. invocationType is RequestResponse (sync) or Event
// (async).
func (o *LambdaOps) Invoke(ctx context.Context, functionName string, payload []byte, invocationType lambdatypes.InvocationType) (*InvokeResult, error) {
	if payload == nil {
		payload = SampleUploadEvent(o.cfg, time.Now())
	}

	fmt.Fprintf(o.out, "Invoking Lambda function: %s (%s)\n", functionName, invocationType)
	o.log.Debug().RawJSON("payload", payload).Msg("invoke payload")

	resp, err := o.api.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: invocationType,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke %q: %w", functionName, err)
	}

	result := &InvokeResult{
		StatusCode:      resp.StatusCode,
		ExecutedVersion: aws.ToString(resp.ExecutedVersion),
		FunctionError:   aws.ToString(resp.FunctionError),
	}
	if len(resp.Payload) > 0 {
		result.Response = json.RawMessage(resp.Payload)
	}

	fmt.Fprintf(o.out, "  status code: %d\n", result.StatusCode)
	if result.ExecutedVersion != "" {
		fmt.Fprintf(o.out, "  executed version: %s\n", result.ExecutedVersion)
	}
	if result.FunctionError != "" {
		fmt.Fprintf(o.out, "  function error: %s\n", result.FunctionError)
	}
	if len(result.Response) > 0 {
		fmt.Fprintf(o.out, "  response: %s\n", string(result.Response))
	}
	return result, nil
}

// InvokeAsync fires an Event-type invocation with the given payload.
func (o *LambdaOps) InvokeAsync(ctx context.Context, functionName string, payload []byte) (*InvokeResult, error) {
	return o.Invoke(ctx, functionName, payload, lambdatypes.InvocationTypeEvent)
}

// GetFunctionLogs tails the newest log stream of the function's
// /aws/lambda log group and prints up to limit events.
func (o *LambdaOps) GetFunctionLogs(ctx context.Context, functionName string, limit int32) ([]cwltypes.OutputLogEvent, error) {
	logGroup := "/aws/lambda/" + functionName

	streams, err := o.logs.DescribeLogStreams(ctx, &cloudwatchlogs.DescribeLogStreamsInput{
		LogGroupName: aws.String(logGroup),
		OrderBy:      cwltypes.OrderByLastEventTime,
		Descending:   aws.Bool(true),
		Limit:        aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("describe log streams of %q: %w", logGroup, err)
	}
	if len(streams.LogStreams) == 0 {
		fmt.Fprintf(o.out, "no log streams found for %q\n", functionName)
		return nil, nil
	}

	streamName := aws.ToString(streams.LogStreams[0].LogStreamName)
	events, err := o.logs.GetLogEvents(ctx, &cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(logGroup),
		LogStreamName: aws.String(streamName),
		Limit:         aws.Int32(limit),
		StartFromHead: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("get log events of %q: %w", logGroup, err)
	}

	fmt.Fprintf(o.out, "Recent logs for %s (stream %s):\n", functionName, streamName)
	for _, ev := range events.Events {
		ts := time.UnixMilli(aws.ToInt64(ev.Timestamp)).Format("2006-01-02 15:04:05")
		fmt.Fprintf(o.out, "  [%s] %s\n", ts, aws.ToString(ev.Message))
	}
	if len(events.Events) == 0 {
		fmt.Fprintln(o.out, "  no log events found")
	}
	return events.Events, nil
}

// SampleUploadEvent builds the default test payload: a single
// ObjectCreated:Put record against the project's files bucket.
func SampleUploadEvent(cfg config.Config, now time.Time) []byte {
	event := map[string]any{
		"Records": []any{
			map[string]any{
				"eventTime": now.UTC().Format(time.RFC3339),
				"eventName": "ObjectCreated:Put",
				"s3": map[string]any{
					"bucket": map[string]any{"name": cfg.BucketPrefix()},
					"object": map[string]any{"key": "resumes/test_resume.pdf", "size": 102400},
				},
				"requestParameters": map[string]any{"sourceIPAddress": "192.168.1.100"},
				"userIdentity":      map[string]any{"principalId": "OPS_TEST_USER"},
			},
		},
	}
	b, err := json.Marshal(event)
	if err != nil {
		// Static shape, cannot fail.
		panic(err)
	}
	return b
}
