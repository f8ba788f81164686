package mail

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotConnected is returned when a handle does not belong to a connected account.
	ErrNotConnected = errors.New("account not connected")
	// ErrAccountNotFound is returned by Connect for an unknown account label.
	ErrAccountNotFound = errors.New("account not found")
	// ErrMessageNotFound is returned by Get for an unknown message id.
	ErrMessageNotFound = errors.New("message not found")
)

// Handle identifies a connected account.
type Handle struct {
	Account string
	Address string
}

// Summary is the listing view of a message.
type Summary struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Date    string `json:"date"`
	Snippet string `json:"snippet,omitempty"`
	Unread  bool   `json:"unread,omitempty"`
}

// Message is a full message.
type Message struct {
	Summary
	To   string `json:"to,omitempty"`
	Body string `json:"body"`
}

// Provider is the mail capability: connect an account by label, list
// messages matching a query and fetch one message in full.
//
// Queries are whitespace separated terms, all of which must match:
// "is:unread", "from:<text>", "subject:<text>", or free text matched
// against subject, sender and snippet. Matching ignores case.
type Provider interface {
	Connect(ctx context.Context, account string) (Handle, error)
	List(ctx context.Context, h Handle, query string, max int) ([]Summary, error)
	Get(ctx context.Context, h Handle, id string) (Message, error)
}

// Mailbox is one account's messages, newest first.
type Mailbox struct {
	Address  string    `json:"address"`
	Messages []Message `json:"messages"`
}

func (m *Mailbox) list(query string, max int) []Summary {
	terms := strings.Fields(strings.ToLower(query))
	var out []Summary
	for _, msg := range m.Messages {
		if max > 0 && len(out) >= max {
			break
		}
		if matches(msg.Summary, terms) {
			out = append(out, msg.Summary)
		}
	}
	return out
}

func (m *Mailbox) get(id string) (Message, bool) {
	for _, msg := range m.Messages {
		if msg.ID == id {
			return msg, true
		}
	}
	return Message{}, false
}

func matches(s Summary, terms []string) bool {
	subject, from := strings.ToLower(s.Subject), strings.ToLower(s.From)
	for _, term := range terms {
		switch {
		case term == "is:unread":
			if !s.Unread {
				return false
			}
		case term == "is:read":
			if s.Unread {
				return false
			}
		case strings.HasPrefix(term, "from:"):
			if !strings.Contains(from, strings.TrimPrefix(term, "from:")) {
				return false
			}
		case strings.HasPrefix(term, "subject:"):
			if !strings.Contains(subject, strings.TrimPrefix(term, "subject:")) {
				return false
			}
		default:
			if !strings.Contains(subject, term) && !strings.Contains(from, term) &&
				!strings.Contains(strings.ToLower(s.Snippet), term) {
				return false
			}
		}
	}
	return true
}
