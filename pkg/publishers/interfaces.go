package publishers

import "context"

// Publisher sends outcome events to a downstream sink (SQS, SNS, HTTP, etc).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
