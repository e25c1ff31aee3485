package clinicclient

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"clinic-booking-be/internal/apperror"
	"clinic-booking-be/internal/chat"

	"go.uber.org/zap"
)

func (c *Client) SendMessage(ctx context.Context, sess Session, appointmentID, message string) (*chat.Message, error) {
	body := map[string]string{"appointment_id": appointmentID, "message": message}

	var out chat.Message
	if err := c.do(ctx, &sess, http.MethodPost, "/api/messages", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Messages returns the thread of an appointment. A positive after returns
// only messages with a larger id.
func (c *Client) Messages(ctx context.Context, sess Session, appointmentID string, after int64) ([]chat.Message, error) {
	var q url.Values
	if after > 0 {
		q = url.Values{"after": {strconv.FormatInt(after, 10)}}
	}

	var out []chat.Message
	if err := c.do(ctx, &sess, http.MethodGet, "/api/messages/"+url.PathEscape(appointmentID), q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Conversations(ctx context.Context, sess Session) ([]chat.Conversation, error) {
	var out []chat.Conversation
	if err := c.do(ctx, &sess, http.MethodGet, "/api/chats", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MessagePoller follows one appointment's chat. Each message is emitted
// once, in (created_at, id) order.
type MessagePoller struct {
	client        *Client
	sess          Session
	appointmentID string
	interval      time.Duration

	cursor int64
	seen   map[int64]struct{}
}

func (c *Client) NewMessagePoller(sess Session, appointmentID string) *MessagePoller {
	return &MessagePoller{
		client:        c,
		sess:          sess,
		appointmentID: appointmentID,
		interval:      c.pollInterval,
		seen:          make(map[int64]struct{}),
	}
}

// Poll fetches messages newer than the last one seen.
func (p *MessagePoller) Poll(ctx context.Context) ([]chat.Message, error) {
	msgs, err := p.client.Messages(ctx, p.sess, p.appointmentID, p.cursor)
	if err != nil {
		return nil, err
	}

	fresh := make([]chat.Message, 0, len(msgs))
	for _, m := range msgs {
		if _, dup := p.seen[m.ID]; dup {
			continue
		}
		p.seen[m.ID] = struct{}{}
		fresh = append(fresh, m)
		if m.ID > p.cursor {
			p.cursor = m.ID
		}
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		if !fresh[i].CreatedAt.Equal(fresh[j].CreatedAt) {
			return fresh[i].CreatedAt.Before(fresh[j].CreatedAt)
		}
		return fresh[i].ID < fresh[j].ID
	})
	return fresh, nil
}

// Run polls until ctx is cancelled, handing new messages to emit.
// Transient failures are skipped; authentication or access errors stop
// the poller and are returned.
func (p *MessagePoller) Run(ctx context.Context, emit func([]chat.Message)) error {
	if err := p.sess.require(); err != nil {
		return err
	}

	log := p.client.log.With(zap.String("appointment_id", p.appointmentID))
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		msgs, err := p.Poll(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil
		case err != nil && !apperror.IsKind(err, apperror.KindTransientNetwork):
			return err
		case err != nil:
			log.Debug("message poll failed, retrying", zap.Error(err))
		case len(msgs) > 0:
			emit(msgs)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
