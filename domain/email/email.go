package email

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/cagandemirsamli/personalassistant/logging"
	"github.com/cagandemirsamli/personalassistant/mail"
)

// ImportanceKeywords flag a message as important when found in its subject
// or sender. Order matters: the first hit is reported.
var ImportanceKeywords = []string{
	"assignment", "deadline", "exam", "urgent", "important",
	"due date", "submit", "final", "midterm", "grade", "professor",
}

// Default result limits.
const (
	DefaultMaxResults          = 10
	DefaultImportantMaxResults = 20
)

// Options configures Tools.
type Options struct {
	// CacheTTL bounds how long fetched message contents are reused.
	CacheTTL time.Duration
	// Now stamps the agent prompt. Defaults to time.Now.
	Now    func() time.Time
	Logger logging.Logger
}

// Tools adapts a mail.Provider into the email tool set. Connected accounts
// are remembered for the lifetime of the Tools.
type Tools struct {
	provider mail.Provider
	contents *cache.Cache
	now      func() time.Time
	logger   logging.Logger

	mu      sync.RWMutex
	handles map[string]mail.Handle
}

// NewTools creates the email tool set over provider.
func NewTools(provider mail.Provider, optFns ...func(o *Options)) *Tools {
	opts := Options{CacheTTL: 10 * time.Minute, Now: time.Now, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Tools{
		provider: provider,
		contents: cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		now:      opts.Now,
		logger:   opts.Logger,
		handles:  map[string]mail.Handle{},
	}
}

func notConnected(account string) string {
	return fmt.Sprintf("Account '%s' not connected. Use connect_account() first.", account)
}

func (t *Tools) handle(account string) (mail.Handle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.handles[account]
	return h, ok
}

// ConnectAccount connects account and remembers its handle.
func (t *Tools) ConnectAccount(ctx context.Context, account string) string {
	h, err := t.provider.Connect(ctx, account)
	if err != nil {
		t.logger.Warn("email.connect.failed", "account", account, "error", err.Error())
		return fmt.Sprintf("Failed to connect to '%s' account: %v.", account, err)
	}

	t.mu.Lock()
	t.handles[account] = h
	t.mu.Unlock()

	return fmt.Sprintf("Connected to '%s' account: %s", account, h.Address)
}

// ListConnectedAccounts names the connected accounts.
func (t *Tools) ListConnectedAccounts() string {
	t.mu.RLock()
	names := make([]string, 0, len(t.handles))
	for name := range t.handles {
		names = append(names, name)
	}
	t.mu.RUnlock()

	if len(names) == 0 {
		return "No accounts connected. Use connect_account() first."
	}
	sort.Strings(names)
	return "Connected accounts: " + strings.Join(names, ", ")
}

// GetUnreadEmails lists unread messages.
func (t *Tools) GetUnreadEmails(ctx context.Context, account string, max int) string {
	return t.listing(ctx, account, "is:unread", max,
		fmt.Sprintf("Unread emails in '%s'", account),
		fmt.Sprintf("No unread emails in '%s'.", account))
}

// GetRecentEmails lists the newest messages.
func (t *Tools) GetRecentEmails(ctx context.Context, account string, max int) string {
	return t.listing(ctx, account, "", max,
		fmt.Sprintf("Recent emails in '%s'", account),
		fmt.Sprintf("No emails found in '%s'.", account))
}

// SearchEmails lists messages matching query.
func (t *Tools) SearchEmails(ctx context.Context, account, query string, max int) string {
	return t.listing(ctx, account, query, max,
		fmt.Sprintf("Emails matching '%s' in '%s'", query, account),
		fmt.Sprintf("No emails found matching '%s' in '%s'.", query, account))
}

// GetEmailsFromSender lists messages whose sender contains sender.
func (t *Tools) GetEmailsFromSender(ctx context.Context, account, sender string, max int) string {
	return t.SearchEmails(ctx, account, "from:"+sender, max)
}

func (t *Tools) listing(ctx context.Context, account, query string, max int, title, empty string) string {
	h, ok := t.handle(account)
	if !ok {
		return notConnected(account)
	}
	if max <= 0 {
		max = DefaultMaxResults
	}

	found, err := t.provider.List(ctx, h, query, max)
	if err != nil {
		t.logger.Warn("email.list.failed", "account", account, "error", err.Error())
		return fmt.Sprintf("Error fetching emails: %v", err)
	}
	if len(found) == 0 {
		return empty
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):", title, len(found))
	for _, s := range found {
		writeSummary(&b, s, "")
	}
	return b.String()
}

// GetEmailContent returns a full message. Contents are cached per account
// and id.
func (t *Tools) GetEmailContent(ctx context.Context, account, id string) string {
	h, ok := t.handle(account)
	if !ok {
		return notConnected(account)
	}

	key := account + "/" + id
	if cached, ok := t.contents.Get(key); ok {
		t.logger.Debug("email.content.cache_hit", "account", account, "id", id)
		return cached.(string)
	}

	msg, err := t.provider.Get(ctx, h, id)
	if errors.Is(err, mail.ErrMessageNotFound) {
		return fmt.Sprintf("Email '%s' not found in '%s'.", id, account)
	}
	if err != nil {
		t.logger.Warn("email.get.failed", "account", account, "id", id, "error", err.Error())
		return fmt.Sprintf("Error fetching emails: %v", err)
	}

	body := msg.Body
	if body == "" {
		body = "(Could not extract email body)"
	}
	text := fmt.Sprintf("ID: %s\nSubject: %s\nFrom: %s\nTo: %s\nDate: %s\n\n%s",
		msg.ID, orDefault(msg.Subject, "No Subject"), orDefault(msg.From, "Unknown"),
		orDefault(msg.To, "Unknown"), orDefault(msg.Date, "Unknown"), body)
	t.contents.SetDefault(key, text)
	return text
}

// CheckImportantEmails scans unread messages for ImportanceKeywords.
func (t *Tools) CheckImportantEmails(ctx context.Context, account string, max int) string {
	h, ok := t.handle(account)
	if !ok {
		return notConnected(account)
	}
	if max <= 0 {
		max = DefaultImportantMaxResults
	}

	unread, err := t.provider.List(ctx, h, "is:unread", max)
	if err != nil {
		t.logger.Warn("email.list.failed", "account", account, "error", err.Error())
		return fmt.Sprintf("Error fetching emails: %v", err)
	}
	if len(unread) == 0 {
		return fmt.Sprintf("No unread emails in '%s'.", account)
	}

	var (
		b       strings.Builder
		flagged int
	)
	for _, s := range unread {
		if keyword := FlaggedKeyword(s); keyword != "" {
			writeSummary(&b, s, keyword)
			flagged++
		}
	}
	if flagged == 0 {
		return fmt.Sprintf("No important emails found in '%s'.", account)
	}
	return fmt.Sprintf("Important emails in '%s' (%d):%s", account, flagged, b.String())
}

// FlaggedKeyword returns the first importance keyword in the subject or
// sender of s, or "".
func FlaggedKeyword(s mail.Summary) string {
	subject, from := strings.ToLower(s.Subject), strings.ToLower(s.From)
	for _, keyword := range ImportanceKeywords {
		if strings.Contains(subject, keyword) || strings.Contains(from, keyword) {
			return keyword
		}
	}
	return ""
}

func writeSummary(b *strings.Builder, s mail.Summary, keyword string) {
	fmt.Fprintf(b, "\n📧 Subject: %s\n   From: %s\n   Date: %s\n   ID: %s",
		orDefault(s.Subject, "No Subject"), orDefault(s.From, "Unknown"), orDefault(s.Date, "Unknown"), s.ID)
	if keyword != "" {
		fmt.Fprintf(b, "\n   Flagged keyword: %s", keyword)
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
