package patterns

import (
	"context"
	"time"
)

// DefaultTimeout bounds every call to the CMS, the email provider and the payment provider.
const DefaultTimeout = 10 * time.Second

// DetachedTimeout bounds work that outlives the request, such as confirmation emails.
const DetachedTimeout = 30 * time.Second

// Detached returns a context that is not cancelled with parent but carries its own deadline.
// Values (request id) are not copied; callers pass what they need explicitly.
func Detached(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
