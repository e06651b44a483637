package cache

import (
	"context"
	"log"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is the transient message a mutation surfaces to the user.
type Notification struct {
	Level    Level  `json:"level"`
	Mutation string `json:"mutation"`
	Message  string `json:"message"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) {
	log.Printf("[Notify] %s %s: %s", n.Level, n.Mutation, n.Message)
}
