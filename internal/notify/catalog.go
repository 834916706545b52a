package notify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	id "ipguard/pkg/domain"
)

// Template is one notification as written in the messages file. Empty
// fields inherit from the default template.
type Template struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Footer      string `yaml:"footer"`
	Color       string `yaml:"color"`
}

// Messages is the messages file layout.
type Messages struct {
	Session struct {
		Kick     string `yaml:"kick"`
		Verified string `yaml:"verified"`
	} `yaml:"session"`
	Default       Template          `yaml:"default"`
	Notifications map[Kind]Template `yaml:"notifications"`
}

// Vars fills the {player}, {ip} and {time} placeholders.
type Vars struct {
	Principal id.PrincipalID
	Player    string
	Address   string
}

const missingValue = "N/a"

func defaultMessages() Messages {
	var m Messages
	m.Session.Kick = "Your address {ip} is not trusted for this account. An operator has been notified."
	m.Session.Verified = "Address {ip} verified."
	m.Default = Template{Footer: "ipguard • {time}", Color: "#5865F2"}
	m.Notifications = map[Kind]Template{
		KindInvalid:         {Title: "Untrusted address", Description: "{player} connected from {ip}, which is not their trusted address. The session was terminated.", Color: "#ED4245"},
		KindVerified:        {Title: "Address verified", Description: "{player} connected from trusted address {ip}.", Color: "#57F287"},
		KindSetIPSuccess:    {Title: "Trusted address set", Description: "{player} is now trusted from {ip}.", Color: "#57F287"},
		KindSetIPFailed:     {Title: "Could not set trusted address", Description: "Setting {ip} for {player} failed. Try again.", Color: "#ED4245"},
		KindRemoveIPSuccess: {Title: "Trusted address removed", Description: "{player} no longer has a trusted address.", Color: "#57F287"},
		KindRemoveIPFailed:  {Title: "Could not remove trusted address", Description: "{player} has no trusted address or the store is unavailable.", Color: "#ED4245"},
		KindNotFound:        {Title: "Unknown principal", Description: "No principal named {player} is known.", Color: "#FEE75C"},
		KindInvalidAddress:  {Title: "Invalid address", Description: "{ip} is not a valid IP address.", Color: "#FEE75C"},
		KindApprovalSuccess: {Title: "Address approved", Description: "{ip} is now trusted for {player}.", Color: "#57F287"},
		KindApprovalFailed:  {Title: "Approval failed", Description: "Trusting {ip} for {player} failed. Try again.", Color: "#ED4245"},
	}
	return m
}

// Catalog renders notifications and principal-facing messages from
// templates. It is safe for concurrent use and can reload its file.
type Catalog struct {
	path   string
	loc    *time.Location
	layout string
	now    func() time.Time
	logger *slog.Logger

	mu   sync.RWMutex
	msgs Messages
}

type CatalogOption func(*Catalog)

// WithMessagesFile sets the YAML file overriding the built-in templates.
func WithMessagesFile(path string) CatalogOption {
	return func(c *Catalog) { c.path = path }
}

// WithTimeFormat sets how {time} is rendered.
func WithTimeFormat(loc *time.Location, layout string) CatalogOption {
	return func(c *Catalog) {
		if loc != nil {
			c.loc = loc
		}
		if layout != "" {
			c.layout = layout
		}
	}
}

func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

func WithCatalogLogger(logger *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCatalog builds a catalog and loads its messages file, if any.
func NewCatalog(opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		loc:    time.UTC,
		layout: time.DateTime,
		now:    time.Now,
		logger: slog.Default(),
		msgs:   defaultMessages(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the messages file. A missing file keeps the built-in
// templates; a malformed one is an error and leaves the current set intact.
func (c *Catalog) Reload() error {
	if c.path == "" {
		return nil
	}
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read messages file: %w", err)
	}

	var file Messages
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse messages file %s: %w", c.path, err)
	}

	merged := defaultMessages()
	if file.Session.Kick != "" {
		merged.Session.Kick = file.Session.Kick
	}
	if file.Session.Verified != "" {
		merged.Session.Verified = file.Session.Verified
	}
	merged.Default = overlay(merged.Default, file.Default)
	for kind, t := range file.Notifications {
		merged.Notifications[kind] = overlay(merged.Notifications[kind], t)
	}

	c.mu.Lock()
	c.msgs = merged
	c.mu.Unlock()
	return nil
}

// Watch reloads the messages file whenever it changes until ctx is done.
// The parent directory is watched so editors that replace the file are
// handled.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.path == "" {
		<-ctx.Done()
		return ctx.Err()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create messages watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(c.path)); err != nil {
		return fmt.Errorf("watch messages dir: %w", err)
	}
	name := filepath.Clean(c.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := c.Reload(); err != nil {
				c.logger.WarnContext(ctx, "messages reload failed", "path", c.path, "error", err)
				continue
			}
			c.logger.InfoContext(ctx, "messages reloaded", "path", c.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.WarnContext(ctx, "messages watcher error", "error", err)
		}
	}
}

// Build renders the template for kind.
func (c *Catalog) Build(kind Kind, v Vars) Notification {
	c.mu.RLock()
	t := overlay(c.msgs.Default, c.msgs.Notifications[kind])
	def := c.msgs.Default
	c.mu.RUnlock()

	now := c.now()
	r := c.replacer(v, now)
	color, ok := parseColor(t.Color)
	if !ok {
		color, _ = parseColor(def.Color)
	}

	n := Notification{
		Kind:        kind,
		Title:       r.Replace(t.Title),
		Description: r.Replace(t.Description),
		Footer:      r.Replace(t.Footer),
		Color:       color,
		Timestamp:   now,
		Principal:   v.Principal,
		DisplayName: v.Player,
		Address:     v.Address,
	}
	if v.Player != "" {
		n.Fields = append(n.Fields, Field{Name: "Player", Value: v.Player, Inline: true})
	}
	if v.Address != "" {
		n.Fields = append(n.Fields, Field{Name: "IP", Value: v.Address, Inline: true})
	}
	return n
}

// KickMessage is shown to a principal whose session is terminated.
func (c *Catalog) KickMessage(v Vars) string {
	c.mu.RLock()
	s := c.msgs.Session.Kick
	c.mu.RUnlock()
	return c.replacer(v, c.now()).Replace(s)
}

// VerifiedMessage is shown to a principal after a successful join-check.
func (c *Catalog) VerifiedMessage(v Vars) string {
	c.mu.RLock()
	s := c.msgs.Session.Verified
	c.mu.RUnlock()
	return c.replacer(v, c.now()).Replace(s)
}

// Snapshot returns a copy of the active templates.
func (c *Catalog) Snapshot() Messages {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := c.msgs
	m.Notifications = maps.Clone(c.msgs.Notifications)
	return m
}

func (c *Catalog) replacer(v Vars, now time.Time) *strings.Replacer {
	return strings.NewReplacer(
		"{player}", orMissing(v.Player),
		"{ip}", orMissing(v.Address),
		"{time}", now.In(c.loc).Format(c.layout),
	)
}

func overlay(base, top Template) Template {
	if top.Title != "" {
		base.Title = top.Title
	}
	if top.Description != "" {
		base.Description = top.Description
	}
	if top.Footer != "" {
		base.Footer = top.Footer
	}
	if top.Color != "" {
		base.Color = top.Color
	}
	return base
}

func parseColor(s string) (int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func orMissing(s string) string {
	if s == "" {
		return missingValue
	}
	return s
}
