// previewd serves the dungeon previewer over SSH. Every connection gets its
// own dungeon and streaming world. Build:
//
//	go build -o previewd ./cmd/previewd
//
// Usage:
//
//	./previewd [--port 2222] [--key previewd_host_key] [--config build.json] [--seed N]
//
// Connect with:
//
//	ssh -p 2222 localhost
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"snapmap/assets"
	"snapmap/internal/config"
	"snapmap/internal/flow"
	"snapmap/internal/moduledb"
	"snapmap/internal/preview"
	internalssh "snapmap/internal/ssh"
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
	xssh "golang.org/x/crypto/ssh"
)

func main() {
	port := flag.Int("port", 2222, "SSH server port")
	keyFile := flag.String("key", "previewd_host_key", "Path to the PEM-encoded host key (auto-generated if absent)")
	cfgFile := flag.String("config", "", "Build config JSON (defaults to the built-in sample dungeon)")
	seed := flag.Int64("seed", 0, "Seed of the first build in each session (0 keeps the config seed)")
	flag.Parse()

	opts, err := previewOptions(*cfgFile, *seed)
	if err != nil {
		log.Fatal(err)
	}
	opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	signer := loadOrCreateHostKey(*keyFile)
	srv := &gossh.Server{
		Addr: fmt.Sprintf(":%d", *port),
		Handler: func(s gossh.Session) {
			handleSession(s, opts)
		},
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		// No authentication: the previewer is read-only and meant for a
		// private network.
		HostSigners: []gossh.Signer{signer},
	}

	log.Printf("previewd listening on :%d", *port)
	log.Printf("Connect with:  ssh -p %d -o StrictHostKeyChecking=no localhost", *port)
	log.Fatal(srv.ListenAndServe())
}

// previewOptions builds session options from a config file, or from the
// built-in sample catalog when path is empty.
func previewOptions(path string, seed int64) (preview.Options, error) {
	var (
		db  *moduledb.Database
		g   *flow.Graph
		err error
	)
	b := config.Default()
	if path != "" {
		if b, err = config.Load(path); err != nil {
			return preview.Options{}, err
		}
		if db, g, err = b.Inputs(); err != nil {
			return preview.Options{}, err
		}
	} else {
		if db, err = assets.Catalog(); err != nil {
			return preview.Options{}, err
		}
		g = assets.Flow()
	}
	if seed != 0 {
		b.Seed = seed
	}
	return preview.Options{
		Database:  db,
		Flow:      g,
		Grow:      b.Grow(),
		Depth:     1,
		DoorLevel: b.DoorLevel,
		WallLevel: b.WallLevel,
	}, nil
}

// termMu serializes os.Setenv("TERM") around screen creation.
var termMu sync.Mutex

// handleSession runs one previewer for the life of the SSH connection.
func handleSession(s gossh.Session, opts preview.Options) {
	pty, winCh, hasPTY := s.Pty()
	if !hasPTY {
		fmt.Fprintln(s, "The previewer requires a PTY. Connect with: ssh -t -p 2222 <host>")
		return
	}

	tty := internalssh.NewTty(s, pty, winCh)
	termMu.Lock()
	_ = os.Setenv("TERM", internalssh.TermFromEnv(s.Environ()))
	screen, err := tcell.NewTerminfoScreenFromTty(tty)
	termMu.Unlock()
	if err != nil {
		fmt.Fprintf(s, "Terminal setup failed: %v\n", err)
		return
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(s, "Screen init failed: %v\n", err)
		return
	}
	defer screen.Fini()

	opts.Logger = opts.Logger.With("remote", s.RemoteAddr().String(), "user", s.User())
	opts.NoBuildLog = true
	sess, err := preview.New(screen, opts)
	if err != nil {
		opts.Logger.Error("previewd: session build failed", "error", err)
		return
	}
	opts.Logger.Info("previewd: session started", "seed", sess.Seed())
	sess.Run()
	opts.Logger.Info("previewd: session ended")
}

// ─── host key ───────────────────────────────────────────────────────────────

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key if the file is absent or unreadable.
func loadOrCreateHostKey(path string) gossh.Signer {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			log.Printf("Loaded host key from %s", path)
			return signer
		}
	}

	log.Printf("Generating new ed25519 host key → %s", path)
	signer, pemBytes, err := newHostKey()
	if err != nil {
		log.Fatalf("host key: %v", err)
	}
	// Persisting is best effort; a fresh key works for this run.
	_ = os.WriteFile(path, pemBytes, 0600)
	return signer
}

func newHostKey() (gossh.Signer, []byte, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate: %w", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("signer: %w", err)
	}
	block, err := xssh.MarshalPrivateKey(key, "snapmap previewd")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal: %w", err)
	}
	return signer, pem.EncodeToMemory(block), nil
}
