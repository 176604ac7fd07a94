package workflows

import "time"

const (
	PublishWorkflowName = "publish_scheduled_patents"
	// PublishWorkflowID is fixed so only one cron schedule exists.
	PublishWorkflowID = "publish-scheduled-patents"

	NewsletterWorkflowName = "newsletter_auto_subscribe"

	ActivityQueryScheduled   = "query_scheduled_patents"
	ActivityPublishPatents   = "publish_patents"
	ActivitySendNotification = "send_publish_notification"
	ActivityCheckFeatureFlag = "check_feature_flag"
	ActivityContactStatus    = "check_contact_status"
	ActivitySubscribeContact = "subscribe_contact"
	ActivityRecordOutcome    = "record_reconcile_outcome"
)

// newsletterRetries is the number of retries after the first attempt.
const newsletterRetries = 3

const (
	publishActivityTimeout = 5 * time.Minute
	notifyActivityTimeout  = time.Minute
	newsletterTimeout      = 30 * time.Second
)

// NewsletterWorkflowID keys the auto-subscribe run by session, so a second
// start for the same session is rejected by the server.
func NewsletterWorkflowID(sessionKey string) string {
	return "newsletter-login-" + sessionKey
}
