// Package ssh adapts gliderlabs/ssh sessions for tcell so a previewer can
// be served to remote terminals.
package ssh

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// DefaultTerm is used when a client sends no TERM or an unsupported one.
const DefaultTerm = "xterm-256color"

// allowedTerms are the terminal types the server will load terminfo for.
var allowedTerms = map[string]bool{
	"xterm":                 true,
	"xterm-256color":        true,
	"screen":                true,
	"screen-256color":       true,
	"tmux":                  true,
	"tmux-256color":         true,
	"linux":                 true,
	"vt100":                 true,
	"rxvt-unicode-256color": true,
}

// TermFromEnv returns the client's TERM if it is allowed, else DefaultTerm.
func TermFromEnv(environ []string) string {
	for _, env := range environ {
		if v, ok := strings.CutPrefix(env, "TERM="); ok {
			if allowedTerms[v] {
				return v
			}
			break
		}
	}
	return DefaultTerm
}

// Tty implements tcell.Tty over one SSH session.
type Tty struct {
	session gossh.Session
	mu      sync.Mutex
	window  gossh.Window
	winCh   <-chan gossh.Window
	onSize  func()
	stop    chan struct{}
	once    sync.Once
}

// NewTty wraps s. pty carries the initial window; winCh delivers resizes.
func NewTty(s gossh.Session, pty gossh.Pty, winCh <-chan gossh.Window) *Tty {
	return &Tty{
		session: s,
		window:  pty.Window,
		winCh:   winCh,
		stop:    make(chan struct{}),
	}
}

func (t *Tty) Read(b []byte) (int, error) { return t.session.Read(b) }
func (t *Tty) Write(b []byte) (int, error) { return t.session.Write(b) }
func (t *Tty) Close() error { return t.session.Close() }

// Start is a no-op; the channel is open for the life of the session.
func (t *Tty) Start() error { return nil }

// Stop ends the resize watcher.
func (t *Tty) Stop() error {
	t.once.Do(func() { close(t.stop) })
	return nil
}

func (t *Tty) Drain() error { return nil }

// WindowSize returns the last reported terminal size.
func (t *Tty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tcell.WindowSize{Width: t.window.Width, Height: t.window.Height}, nil
}

// NotifyResize registers cb and starts watching for window changes until
// the session's resize channel closes or Stop is called.
func (t *Tty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.onSize = cb
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.stop:
				return
			case win, ok := <-t.winCh:
				if !ok {
					return
				}
				t.mu.Lock()
				t.window = win
				fn := t.onSize
				t.mu.Unlock()
				if fn != nil {
					fn()
				}
			}
		}
	}()
}
