package workflows

import (
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/workflow"
)

// Registry is the part of worker.Worker used for registration. The test
// environment satisfies it too.
type Registry interface {
	RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
	RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
}

func Register(r Registry, acts *Activities) {
	r.RegisterWorkflowWithOptions(PublishScheduledPatentsWorkflow, workflow.RegisterOptions{Name: PublishWorkflowName})
	r.RegisterWorkflowWithOptions(NewsletterAutoSubscribeWorkflow, workflow.RegisterOptions{Name: NewsletterWorkflowName})

	r.RegisterActivityWithOptions(acts.QueryScheduled, activity.RegisterOptions{Name: ActivityQueryScheduled})
	r.RegisterActivityWithOptions(acts.PublishPatents, activity.RegisterOptions{Name: ActivityPublishPatents})
	r.RegisterActivityWithOptions(acts.SendNotification, activity.RegisterOptions{Name: ActivitySendNotification})
	r.RegisterActivityWithOptions(acts.CheckFeatureFlag, activity.RegisterOptions{Name: ActivityCheckFeatureFlag})
	r.RegisterActivityWithOptions(acts.ContactStatus, activity.RegisterOptions{Name: ActivityContactStatus})
	r.RegisterActivityWithOptions(acts.SubscribeContact, activity.RegisterOptions{Name: ActivitySubscribeContact})
	r.RegisterActivityWithOptions(acts.RecordOutcome, activity.RegisterOptions{Name: ActivityRecordOutcome})
}
