package email

import (
	"context"
	"sync"
)

// RecordingSender keeps every message it is asked to send. FailFn, when
// set, decides per message whether the send fails; the message is recorded
// either way.
type RecordingSender struct {
	mu       sync.Mutex
	messages []Message
	FailFn   func(msg Message) error
}

// Send implements Sender
func (r *RecordingSender) Send(ctx context.Context, msg Message) error {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	failFn := r.FailFn
	r.mu.Unlock()

	if failFn != nil {
		return failFn(msg)
	}
	return nil
}

// Messages returns a copy of the recorded messages in send order
func (r *RecordingSender) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Recipients returns the To address of every recorded message
func (r *RecordingSender) Recipients() []string {
	msgs := r.Messages()
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.To)
	}
	return out
}
