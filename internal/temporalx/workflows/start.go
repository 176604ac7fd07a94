package workflows

import (
	"context"
	"errors"
	"fmt"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/futureofgaming-backend/internal/domain/newsletter"
)

func alreadyStarted(err error) bool {
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	return errors.As(err, &started)
}

// EnsurePublishSchedule starts the cron workflow unless it already runs.
func EnsurePublishSchedule(ctx context.Context, c temporalsdkclient.Client, taskQueue, cron string) error {
	if c == nil {
		return fmt.Errorf("temporal client is not configured")
	}
	_, err := c.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:                                       PublishWorkflowID,
		TaskQueue:                                taskQueue,
		CronSchedule:                             cron,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, PublishWorkflowName)
	if err != nil && !alreadyStarted(err) {
		return fmt.Errorf("start publish schedule: %w", err)
	}
	return nil
}

// LoginStarter publishes login events by starting the auto-subscribe
// workflow. The workflow id is derived from the session, so a repeat start
// for the same session is a no-op.
type LoginStarter struct {
	client    temporalsdkclient.Client
	taskQueue string
}

func NewLoginStarter(c temporalsdkclient.Client, taskQueue string) *LoginStarter {
	return &LoginStarter{client: c, taskQueue: taskQueue}
}

func (s *LoginStarter) PublishLogin(ctx context.Context, sessionKey string, ev newsletter.LoginEvent) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("temporal client is not configured")
	}
	_, err := s.client.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:                                       NewsletterWorkflowID(sessionKey),
		TaskQueue:                                s.taskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, NewsletterWorkflowName, ev)
	if err != nil && !alreadyStarted(err) {
		return fmt.Errorf("start newsletter workflow: %w", err)
	}
	return nil
}
