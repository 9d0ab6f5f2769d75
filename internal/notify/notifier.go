package notify

import (
	"context"
	"sync"

	"github.com/arkfood/ordering-backend/pkg/enums"
	"github.com/arkfood/ordering-backend/pkg/logger"
)

// Notice is a user-facing message produced by a cart operation, the
// server-side equivalent of a storefront toast.
type Notice struct {
	Level   enums.NoticeLevel `json:"level"`
	Message string            `json:"message"`
}

// Notifier receives user-facing notices. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// LogNotifier writes notices to the structured log.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) Notify(ctx context.Context, notice Notice) {
	if n == nil || n.logg == nil {
		return
	}
	ctx = n.logg.WithFields(ctx, map[string]any{
		"notice_level": notice.Level.String(),
		"notice":       notice.Message,
	})
	switch notice.Level {
	case enums.NoticeWarning:
		n.logg.Warn(ctx, "cart notice")
	case enums.NoticeError:
		n.logg.Error(ctx, "cart notice", nil)
	default:
		n.logg.Info(ctx, "cart notice")
	}
}

// Capture collects notices for assertions and for draining to API clients.
type Capture struct {
	mu      sync.Mutex
	notices []Notice
}

func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) Notify(_ context.Context, notice Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, notice)
}

// Drain returns the collected notices and resets the buffer.
func (c *Capture) Drain() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// Notices returns a copy of the collected notices without resetting.
func (c *Capture) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice(nil), c.notices...)
}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, notice Notice) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, notice)
		}
	}
}
