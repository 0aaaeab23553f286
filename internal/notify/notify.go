// Package notify delivers transient user-visible notifications. Failures in
// the data layer are reported here instead of being returned into the UI.
package notify

import (
	"embed"
	"encoding/json"
	"sync"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	MsgOrdersTrimmed        = "OrdersTrimmed"
	MsgOrdersNotSaved       = "OrdersNotSaved"
	MsgStorageCompacted     = "StorageCompacted"
	MsgStorageCompactFailed = "StorageCompactFailed"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warning"
	LevelError Level = "error"
)

type Notification struct {
	Level     Level
	MessageID string
	Text      string
	At        time.Time
}

type Notifier interface {
	Info(messageID string, data map[string]any)
	Warn(messageID string, data map[string]any)
	Error(messageID string, data map[string]any)
}

//go:embed locales/*.json
var locales embed.FS

// NewBundle loads the embedded message files.
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, path := range []string{"locales/active.en.json", "locales/active.id.json"} {
		if _, err := bundle.LoadMessageFileFS(locales, path); err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

// LocalizedNotifier renders messages in the configured locale, logs them and
// hands them to an optional sink (a toast queue, a websocket, a channel).
type LocalizedNotifier struct {
	localizer *i18n.Localizer
	logger    logger.ZapLogger
	sink      func(Notification)
	now       func() time.Time
}

func NewLocalizedNotifier(bundle *i18n.Bundle, locale string, log logger.ZapLogger, sink func(Notification)) *LocalizedNotifier {
	return &LocalizedNotifier{
		localizer: i18n.NewLocalizer(bundle, locale, "en"),
		logger:    log,
		sink:      sink,
		now:       time.Now,
	}
}

func (n *LocalizedNotifier) Info(messageID string, data map[string]any) {
	n.emit(LevelInfo, messageID, data)
}

func (n *LocalizedNotifier) Warn(messageID string, data map[string]any) {
	n.emit(LevelWarn, messageID, data)
}

func (n *LocalizedNotifier) Error(messageID string, data map[string]any) {
	n.emit(LevelError, messageID, data)
}

func (n *LocalizedNotifier) emit(level Level, messageID string, data map[string]any) {
	text, err := n.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		n.logger.Warn("missing notification message", zap.String("message_id", messageID), zap.Error(err))
		text = messageID
	}

	switch level {
	case LevelError:
		n.logger.Error("user notification", zap.String("message_id", messageID), zap.String("text", text))
	case LevelWarn:
		n.logger.Warn("user notification", zap.String("message_id", messageID), zap.String("text", text))
	default:
		n.logger.Info("user notification", zap.String("message_id", messageID), zap.String("text", text))
	}

	if n.sink != nil {
		n.sink(Notification{Level: level, MessageID: messageID, Text: text, At: n.now()})
	}
}

var (
	_ Notifier = Discard{}
	_ Notifier = (*Recorder)(nil)
)

// Discard drops every notification.
type Discard struct{}

func (Discard) Info(string, map[string]any)  {}
func (Discard) Warn(string, map[string]any)  {}
func (Discard) Error(string, map[string]any) {}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Info(messageID string, _ map[string]any)  { r.add(LevelInfo, messageID) }
func (r *Recorder) Warn(messageID string, _ map[string]any)  { r.add(LevelWarn, messageID) }
func (r *Recorder) Error(messageID string, _ map[string]any) { r.add(LevelError, messageID) }

func (r *Recorder) add(level Level, messageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: level, MessageID: messageID, Text: messageID, At: time.Now()})
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Count returns how many notifications with the given level were recorded.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.Level == level {
			n++
		}
	}
	return n
}
