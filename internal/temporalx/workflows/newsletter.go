package workflows

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/futureofgaming-backend/internal/domain/newsletter"
)

// NewsletterAutoSubscribeWorkflow runs one reconcile cycle for a login.
// Re-delivery converges because the contact status is read again each run.
func NewsletterAutoSubscribeWorkflow(ctx workflow.Context, ev newsletter.LoginEvent) (newsletter.Outcome, error) {
	if strings.TrimSpace(ev.Email) == "" {
		return newsletter.Outcome{}, temporal.NewNonRetryableApplicationError("login event has no email", "invalid_event", nil)
	}
	log := workflow.GetLogger(ctx)
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: newsletterTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: newsletterRetries + 1},
	})

	var enabled bool
	if err := workflow.ExecuteActivity(ctx, ActivityCheckFeatureFlag).Get(ctx, &enabled); err != nil {
		return newsletter.Outcome{}, err
	}
	if !enabled {
		log.Info("Auto-subscribe disabled by feature flag")
		outcome := newsletter.Decide(false, newsletter.StatusAbsent).Outcome
		recordOutcome(ctx, ev.UserID, outcome)
		return outcome, nil
	}

	var status newsletter.ContactStatus
	if err := workflow.ExecuteActivity(ctx, ActivityContactStatus, ev.Email).Get(ctx, &status); err != nil {
		return newsletter.Outcome{}, err
	}

	decision := newsletter.Decide(true, status)
	if decision.Subscribe {
		if err := workflow.ExecuteActivity(ctx, ActivitySubscribeContact, ev).Get(ctx, nil); err != nil {
			return newsletter.Outcome{}, err
		}
	}
	recordOutcome(ctx, ev.UserID, decision.Outcome)
	return decision.Outcome, nil
}

// recordOutcome reports the result to the worker's metrics. It is best
// effort: a failure is logged and never fails the reconcile.
func recordOutcome(ctx workflow.Context, userID string, outcome newsletter.Outcome) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	if err := workflow.ExecuteActivity(ctx, ActivityRecordOutcome, userID, outcome).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("Recording reconcile outcome failed", "user_id", userID, "error", err)
	}
}
