package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// SlackAPI is the slice of the Slack client the reporter uses.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Reporter posts orchestration milestone messages to a fixed channel.
// It never returns an error: a lost notification must not mask the
// failure it was reporting.
type Reporter struct {
	api     SlackAPI
	channel string
}

func NewReporter(api SlackAPI, channel string) *Reporter {
	return &Reporter{api: api, channel: channel}
}

func (r *Reporter) post(ctx context.Context, text string) {
	_, _, err := r.api.PostMessageContext(ctx, r.channel, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("posting to %s failed: %s", r.channel, err.Error())
	}
}

func (r *Reporter) OnboardStarted(ctx context.Context, name string) {
	r.post(ctx, onboardStartedMessage(name))
}

func (r *Reporter) OnboardSucceeded(ctx context.Context, name string, id int64, url string) {
	r.post(ctx, onboardSucceededMessage(name, id, url))
}

func (r *Reporter) OnboardFailed(ctx context.Context, name string, cause error) {
	r.post(ctx, onboardFailedMessage(name, cause))
}

func (r *Reporter) OffboardStarted(ctx context.Context, name string) {
	r.post(ctx, offboardStartedMessage(name))
}

func (r *Reporter) OffboardSucceeded(ctx context.Context, name string, id int64) {
	r.post(ctx, offboardSucceededMessage(name, id))
}

func (r *Reporter) OffboardFailed(ctx context.Context, name string, cause error) {
	r.post(ctx, offboardFailedMessage(name, cause))
}

func onboardStartedMessage(name string) string {
	return fmt.Sprintf("🔄 *Client onboarding in progress* 🔄\n\n*Name:* %s\n\nThe tenant onboarding process has started. Please wait for the confirmation message.", name)
}

func onboardSucceededMessage(name string, id int64, url string) string {
	return fmt.Sprintf("🎉 *Client onboarded!* 🎉\n\n*Name:* %s\n*ID:* %d\n*URL:* %s", name, id, url)
}

func onboardFailedMessage(name string, cause error) string {
	return fmt.Sprintf("⚠️ *Failed to onboard tenant %s* ⚠️\n\n%s", name, cause.Error())
}

func offboardStartedMessage(name string) string {
	return fmt.Sprintf("🔄 *Client offboarding in progress* 🔄\n\n*Name:* %s\n\nThe tenant offboarding process has started. Please wait for the confirmation message.", name)
}

func offboardSucceededMessage(name string, id int64) string {
	return fmt.Sprintf("🎉 *Client offboarded!* 🎉\n\n*Name:* %s\n*ID:* %d\n\nThe tenant has been offboarded and all data has been deleted.", name, id)
}

func offboardFailedMessage(name string, cause error) string {
	return fmt.Sprintf("⚠️ *Failed to offboard tenant %s* ⚠️\n\n%s", name, cause.Error())
}
