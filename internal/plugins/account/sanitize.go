package account

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/keyxmakerx/authpages/internal/apiclient"
)

var (
	messagePolicy     *bluemonday.Policy
	messagePolicyOnce sync.Once
)

// getMessagePolicy returns the shared strict policy, initializing it on
// first call.
func getMessagePolicy() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	return messagePolicy
}

// cleanMessage strips any markup from a backend-provided message before it
// is shown. Templates escape on output, so entities produced by the policy
// are decoded here to avoid double escaping. A message that is nothing but
// markup falls back to the default.
func cleanMessage(msg string) string {
	clean := strings.TrimSpace(html.UnescapeString(getMessagePolicy().Sanitize(msg)))
	if clean == "" {
		return apiclient.DefaultErrorMessage
	}
	return clean
}
