package terminal

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/accepted/internal/app"
	"github.com/dshills/accepted/internal/input/key"
)

// Screen draws the editor on a tcell screen. Render and the key reader
// may run on different goroutines.
type Screen struct {
	mu     sync.Mutex
	screen tcell.Screen
	theme  Theme

	// Scroll offsets: first visible line and first visible display column.
	top  int
	left int

	last    *app.View
	started bool
}

// Option configures a Screen.
type Option func(*Screen)

// WithTheme sets the styles.
func WithTheme(t Theme) Option {
	return func(s *Screen) {
		s.theme = t
	}
}

// New creates a Screen on the controlling terminal.
func New(opts ...Option) (*Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen, opts...), nil
}

// NewWithScreen creates a Screen on an existing tcell screen, such as a
// simulation screen.
func NewWithScreen(screen tcell.Screen, opts ...Option) *Screen {
	s := &Screen{screen: screen, theme: DefaultTheme()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init takes over the terminal.
func (s *Screen) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.screen.Init(); err != nil {
		return err
	}
	s.screen.SetStyle(s.theme.Text)
	s.screen.Clear()
	s.started = true
	return nil
}

// Close restores the terminal. The channel returned by Keys is closed
// after Close.
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.screen.Fini()
}

// Render implements app.Renderer.
func (s *Screen) Render(v app.View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.last = &v
	s.draw(v)
	s.screen.Show()
}

// Keys reads the terminal until ctx ends or the screen is closed and
// delivers key presses in order. Resizes redraw the last view.
func (s *Screen) Keys(ctx context.Context) <-chan key.Event {
	out := make(chan key.Event, 64)
	go func() {
		defer close(out)
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				k, ok := decodeKey(ev)
				if !ok {
					continue
				}
				select {
				case out <- k:
				case <-ctx.Done():
					return
				}
			case *tcell.EventResize:
				s.resize()
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return out
}

func (s *Screen) resize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.screen.Sync()
	if s.last != nil {
		s.draw(*s.last)
		s.screen.Show()
	}
}
