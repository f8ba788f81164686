package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DirProvider reads mailbox exports from a directory, one <account>.json per
// account holding a Mailbox. Connect reads the file; later calls are served
// from the snapshot taken at connect time.
type DirProvider struct {
	dir string

	mu        sync.RWMutex
	mailboxes map[string]*Mailbox
}

// NewDirProvider creates a provider rooted at dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{dir: dir, mailboxes: map[string]*Mailbox{}}
}

// Connect implements Provider.
func (p *DirProvider) Connect(ctx context.Context, account string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}

	raw, err := os.ReadFile(filepath.Join(p.dir, filepath.Base(account)+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return Handle{}, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	if err != nil {
		return Handle{}, fmt.Errorf("read mailbox %s: %w", account, err)
	}

	var mb Mailbox
	if err := json.Unmarshal(raw, &mb); err != nil {
		return Handle{}, fmt.Errorf("decode mailbox %s: %w", account, err)
	}

	p.mu.Lock()
	p.mailboxes[account] = &mb
	p.mu.Unlock()

	return Handle{Account: account, Address: mb.Address}, nil
}

// List implements Provider.
func (p *DirProvider) List(ctx context.Context, h Handle, query string, max int) ([]Summary, error) {
	mb, err := p.mailbox(ctx, h)
	if err != nil {
		return nil, err
	}
	return mb.list(query, max), nil
}

// Get implements Provider.
func (p *DirProvider) Get(ctx context.Context, h Handle, id string) (Message, error) {
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

func (p *DirProvider) mailbox(ctx context.Context, h Handle) (*Mailbox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	mb, ok := p.mailboxes[h.Account]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, h.Account)
	}
	return mb, nil
}
