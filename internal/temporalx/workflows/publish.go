package workflows

import (
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
)

// PublishScheduledPatentsWorkflow promotes due patents and mails a summary.
// It is started with a cron schedule; every run is independent.
func PublishScheduledPatentsWorkflow(ctx workflow.Context) (*patent.PublishResult, error) {
	log := workflow.GetLogger(ctx)
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: publishActivityTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})

	var due []patent.Scheduled
	if err := workflow.ExecuteActivity(ctx, ActivityQueryScheduled).Get(ctx, &due); err != nil {
		return nil, err
	}
	if len(due) == 0 {
		log.Info("No patents to publish")
		return &patent.PublishResult{Success: true, Message: patent.PublishMessageNone}, nil
	}

	var published []patent.Published
	if err := workflow.ExecuteActivity(ctx, ActivityPublishPatents, due).Get(ctx, &published); err != nil {
		return nil, err
	}

	if len(published) > 0 {
		notifyCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: notifyActivityTimeout,
			RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
		})
		if err := workflow.ExecuteActivity(notifyCtx, ActivitySendNotification, published).Get(notifyCtx, nil); err != nil {
			log.Error("Error sending email notification", "error", err)
		}
	}

	return &patent.PublishResult{
		Success: true,
		Message: patent.PublishMessageDone,
		Count:   len(published),
		Patents: published,
	}, nil
}
