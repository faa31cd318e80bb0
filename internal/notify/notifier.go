// Package notify delivers operator alerts. Delivery is fire-and-forget:
// implementations log failures and never report them to callers, so a
// broken channel can never block a scan or a sweep.
package notify

import "github.com/rs/zerolog"

// Notifier emits a single alert. The tag deduplicates at the delivery
// layer when the transport supports it; callers handle their own
// suppression regardless.
type Notifier interface {
	Emit(title, body, tag string)
}

// LogNotifier writes alerts to the service log. It is the fallback when
// no delivery channel is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Emit(title, body, tag string) {
	n.log.Info().
		Str("title", title).
		Str("tag", tag).
		Msg(body)
}
