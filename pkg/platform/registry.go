package platform

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kart-io/reportnotify/pkg/errors"
	"github.com/kart-io/reportnotify/pkg/logger"
	"github.com/kart-io/reportnotify/pkg/recipient"
	"github.com/kart-io/reportnotify/pkg/report"
)

// Registry routes recipients to the channel registered for their type.
type Registry struct {
	channels map[recipient.Type]Channel
	logger   logger.Logger
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = logger.Discard
	}
	return &Registry{
		channels: make(map[recipient.Type]Channel),
		logger:   log,
	}
}

// Register binds a channel to a recipient type.
func (r *Registry) Register(typ recipient.Type, ch Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.channels[typ]; exists {
		return fmt.Errorf("channel for %s already registered", typ)
	}

	r.channels[typ] = ch
	r.logger.Debug("Channel registered", "recipient_type", string(typ), "channel", ch.Name())
	return nil
}

// Get returns the channel registered for typ.
func (r *Registry) Get(typ recipient.Type) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.channels[typ]
	return ch, ok
}

// Types lists registered recipient types in sorted order.
func (r *Registry) Types() []recipient.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]recipient.Type, 0, len(r.channels))
	for typ := range r.channels {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Dispatch sends content through the channel registered for the recipient's type.
func (r *Registry) Dispatch(ctx context.Context, content *report.Content, rcpt recipient.Recipient) (*SendResult, error) {
	ch, ok := r.Get(rcpt.Type)
	if !ok {
		return nil, errors.Newf(errors.ErrUnsupportedRecipient,
			"no channel registered for recipient type %q", rcpt.Type)
	}
	return ch.Send(ctx, content, rcpt)
}
