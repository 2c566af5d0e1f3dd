// Package inbox feeds downlinks to a station from a drop directory.
// Each file named "<port>-<anything>.hex" holds one hex encoded payload;
// the plugin queues it for the next receive window and removes the file.
package inbox

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/pkg/airship"
	"github.com/bft-labs/airship/pkg/log"
)

// DirName is the inbox directory under the station state directory.
const DirName = "inbox"

const (
	fileSuffix     = ".hex"
	rejectedSuffix = ".rejected"
)

// ErrBadFile is returned for inbox files whose name or content is not a downlink.
var ErrBadFile = errors.New("inbox: malformed downlink file")

// Config holds configuration options for the inbox plugin.
type Config struct {
	// Dir overrides the watched directory.
	// Default: <StateDir>/inbox
	Dir string

	// DebounceDelay is the delay after the last file event before the
	// directory is scanned.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{DebounceDelay: 100 * time.Millisecond}
}

// Plugin watches the inbox directory.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration
	dir           string

	queue    ports.DownlinkQueue
	logger   log.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer

	scanMu sync.Mutex
}

// New creates an inbox plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		dir:           cfg.Dir,
		logger:        log.NewNoopLogger(),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "inbox"
}

// Dir returns the watched directory, which is known after Initialize.
func (p *Plugin) Dir() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dir
}

// Initialize drains files already in the inbox and starts watching it.
func (p *Plugin) Initialize(ctx context.Context, cfg airship.PluginConfig) error {
	p.mu.Lock()
	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	if p.dir == "" && cfg.StateDir != "" {
		p.dir = filepath.Join(cfg.StateDir, DirName)
	}
	p.queue = cfg.Downlinks
	dir := p.dir
	p.mu.Unlock()

	if dir == "" || p.queue == nil {
		p.logger.Warn("inbox disabled: no directory or radio cannot queue downlinks")
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	p.scan()

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	p.logger.Info("inbox watching", log.String("dir", dir))
	return nil
}

// Shutdown stops the watcher and any pending scan.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, fileSuffix) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			p.debounceScan(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("inbox watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceScan(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.scan()
	})
}

// scan queues every downlink file in name order.
func (p *Plugin) scan() {
	p.scanMu.Lock()
	defer p.scanMu.Unlock()

	dir := p.Dir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		p.logger.Error("read inbox", log.String("dir", dir), log.Err(err))
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		dl, err := ReadFile(path)
		if err != nil {
			p.logger.Warn("rejecting inbox file", log.String("file", e.Name()), log.Err(err))
			if rerr := os.Rename(path, path+rejectedSuffix); rerr != nil {
				p.logger.Error("rename rejected file", log.String("file", e.Name()), log.Err(rerr))
			}
			continue
		}
		if err := os.Remove(path); err != nil {
			// Not queued, or it would replay on every scan.
			p.logger.Error("remove inbox file", log.String("file", e.Name()), log.Err(err))
			continue
		}
		p.queue.Enqueue(dl)
		p.logger.Info("downlink queued",
			log.String("file", e.Name()),
			log.Int("port", int(dl.Port)),
			log.Hex("payload", dl.Data))
	}
}

// ReadFile parses a downlink file. The port comes from the file name.
func ReadFile(path string) (ports.Downlink, error) {
	name := strings.TrimSuffix(filepath.Base(path), fileSuffix)
	portStr, _, _ := strings.Cut(name, "-")
	port, err := strconv.ParseUint(portStr, 10, 8)
	if err != nil || port == 0 {
		return ports.Downlink{}, fmt.Errorf("%w: port %q", ErrBadFile, portStr)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return ports.Downlink{}, err
	}
	data, err := hex.DecodeString(strings.Join(strings.Fields(string(raw)), ""))
	if err != nil {
		return ports.Downlink{}, fmt.Errorf("%w: %v", ErrBadFile, err)
	}
	return ports.Downlink{Port: uint8(port), Data: data}, nil
}

// WriteFile drops a downlink into dir. The file appears atomically so a
// watching plugin never reads a partial payload.
func WriteFile(dir string, dl ports.Downlink) (string, error) {
	if dl.Port == 0 {
		return "", fmt.Errorf("%w: port 0", ErrBadFile)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d-%d%s", dl.Port, time.Now().UnixNano(), fileSuffix)
	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(hex.EncodeToString(dl.Data)+"\n"), 0o600); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return path, nil
}

var _ airship.Plugin = (*Plugin)(nil)
