// Package notify delivers low-balance notifications over email and
// webhook (markdown bot) channels. Every send operation is total: failures
// come back inside a Result, never as a panic or error return.
package notify

type Channel string

const (
	ChannelEmail  Channel = "email"
	ChannelWechat Channel = "wechat"
)

// Result is the outcome of one delivery attempt.
type Result struct {
	Channel   Channel `json:"channel"`
	Success   bool    `json:"success"`
	MessageID string  `json:"message_id,omitempty"`
	Error     string  `json:"error,omitempty"`
}

func failure(ch Channel, err error) Result {
	return Result{Channel: ch, Error: err.Error()}
}
