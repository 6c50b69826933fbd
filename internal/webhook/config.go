// Package webhook forwards catalog notifications to an HTTP endpoint.
package webhook

import "github.com/marcus/shelf/internal/config"

// FromConfig returns a Notifier for the configured webhook, or nil when
// no webhook URL is set.
func FromConfig(server string) *Notifier {
	url := config.GetWebhookURL()
	if url == "" {
		return nil
	}
	return New(url, config.GetWebhookSecret(), server)
}
