// Package slack delivers change reports to a Slack incoming webhook.
package slack
