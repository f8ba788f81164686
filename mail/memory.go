package mail

import (
	"context"
	"fmt"
	"sync"
)

// MemoryProvider serves mailboxes held in memory. Use it in tests and demos.
type MemoryProvider struct {
	mu        sync.RWMutex
	mailboxes map[string]*Mailbox
	connected map[string]bool
}

// NewMemoryProvider creates an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		mailboxes: map[string]*Mailbox{},
		connected: map[string]bool{},
	}
}

// AddMailbox registers account with its messages, newest first.
func (p *MemoryProvider) AddMailbox(account, address string, messages ...Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mailboxes[account] = &Mailbox{Address: address, Messages: messages}
}

// Connect implements Provider.
func (p *MemoryProvider) Connect(ctx context.Context, account string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	mb, ok := p.mailboxes[account]
	if !ok {
		return Handle{}, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	p.connected[account] = true
	return Handle{Account: account, Address: mb.Address}, nil
}

// List implements Provider.
func (p *MemoryProvider) List(ctx context.Context, h Handle, query string, max int) ([]Summary, error) {
	mb, err := p.mailbox(ctx, h)
	if err != nil {
		return nil, err
	}
	return mb.list(query, max), nil
}

// Get implements Provider.
func (p *MemoryProvider) Get(ctx context.Context, h Handle, id string) (Message, error) {
	mb, err := p.mailbox(ctx, h)
	if err != nil {
		return Message{}, err
	}
	msg, ok := mb.get(id)
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	return msg, nil
}

func (p *MemoryProvider) mailbox(ctx context.Context, h Handle) (*Mailbox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.connected[h.Account] {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, h.Account)
	}
	return p.mailboxes[h.Account], nil
}
