// Package keyboard feeds terminal key presses into the editor as actions.
package keyboard

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"calc-editor/internal/editor"
)

// Handler receives every mapped action, once per key press.
type Handler interface {
	HandleAction(editor.Action)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(editor.Action)

func (f HandlerFunc) HandleAction(a editor.Action) { f(a) }

// Adapter owns the key-event subscription of a screen for the time it runs.
type Adapter struct {
	screen   tcell.Screen
	handler  Handler
	onResize func()
	logger   *zap.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithResizeHandler registers fn to be called on terminal resize.
func WithResizeHandler(fn func()) Option {
	return func(a *Adapter) {
		a.onResize = fn
	}
}

// WithLogger sets the adapter logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// New returns an adapter forwarding key presses from screen to h.
// The screen must already be initialised.
func New(screen tcell.Screen, h Handler, opts ...Option) *Adapter {
	a := &Adapter{
		screen:  screen,
		handler: h,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run subscribes to the screen's events and dispatches them until ctx is
// done, a quit key is pressed or the event stream closes. The subscription
// is released on every return path.
func (a *Adapter) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go a.screen.ChannelEvents(events, quit)
	defer close(quit)

	a.logger.Debug("keyboard subscription installed")
	defer a.logger.Debug("keyboard subscription released")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if done := a.handle(ev); done {
				return nil
			}
		}
	}
}

func (a *Adapter) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if isQuit(ev) {
			return true
		}
		if action, ok := FromKey(ev); ok {
			a.logger.Debug("key dispatched", zap.String("action", action.String()))
			a.handler.HandleAction(action)
		}
	case *tcell.EventResize:
		if a.onResize != nil {
			a.onResize()
		}
	}
	return false
}
