package endpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/smithy-go"
)

// logGroupPrefix is where SageMaker endpoints write their container logs.
const logGroupPrefix = "/aws/sagemaker/Endpoints/"

// logsAPI is the subset of the CloudWatch Logs API used here.
type logsAPI interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

// Compile-time check that the real SDK client satisfies logsAPI.
var _ logsAPI = (*cloudwatchlogs.Client)(nil)

// LogEvent is one endpoint log line.
type LogEvent struct {
	Timestamp time.Time
	Message   string
}

// RecentLogs reads the endpoint's log group for events newer than since,
// following pagination until limit events are collected. An endpoint that
// has never been invoked has no log group yet; that is reported as a
// descriptive error rather than a raw API failure.
func RecentLogs(ctx context.Context, api logsAPI, endpointName string, since time.Duration, limit int) ([]LogEvent, error) {
	group := logGroupPrefix + endpointName
	start := time.Now().Add(-since).UnixMilli()

	var events []LogEvent
	var nextToken *string
	for {
		out, err := api.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
			LogGroupName: aws.String(group),
			StartTime:    aws.Int64(start),
			NextToken:    nextToken,
		})
		if err != nil {
			if isLogGroupMissing(err) {
				return nil, fmt.Errorf(
					"no logs for endpoint %q yet: the log group %s does not exist until the endpoint has handled traffic",
					endpointName, group,
				)
			}
			return nil, fmt.Errorf("read logs for endpoint %q: %w", endpointName, err)
		}

		for _, e := range out.Events {
			events = append(events, LogEvent{
				Timestamp: time.UnixMilli(aws.ToInt64(e.Timestamp)),
				Message:   aws.ToString(e.Message),
			})
			if len(events) >= limit {
				return events, nil
			}
		}

		if out.NextToken == nil {
			return events, nil
		}
		nextToken = out.NextToken
	}
}

// isLogGroupMissing returns true for CloudWatch's ResourceNotFoundException.
func isLogGroupMissing(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceNotFoundException"
}
