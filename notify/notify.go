// Package notify carries user facing notifications (the toast of a UI) from
// the coordinator and services to whatever surface is listening.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-repository-switch/pkg/logger"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Success is a shorthand for a success notification stamped now.
func Success(msg string) Notification {
	return Notification{Level: LevelSuccess, Message: msg, Time: time.Now()}
}

// Failure is a shorthand for an error notification stamped now.
func Failure(err error) Notification {
	return Notification{Level: LevelError, Message: err.Error(), Time: time.Now()}
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) {
	fields := []logger.Field{logger.String("level", string(n.Level))}
	if n.Level == LevelError {
		l.log.Warn(ctx, n.Message, fields...)
		return
	}
	l.log.Info(ctx, n.Message, fields...)
}

// Recorder keeps the most recent notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	limit int
	items []Notification
}

// NewRecorder keeps at most limit notifications. limit <= 0 keeps 50.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 50
	}
	return &Recorder{limit: limit}
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	if over := len(r.items) - r.limit; over > 0 {
		r.items = append([]Notification(nil), r.items[over:]...)
	}
}

// All returns a copy, oldest first.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Last returns the newest notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Fanout delivers every notification to each notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notification) {
	for _, x := range f {
		x.Notify(ctx, n)
	}
}
