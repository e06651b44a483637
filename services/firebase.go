package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
	"masterboxer.com/confessly/models"
)

var (
	messagingClient *messaging.Client
	once            sync.Once
	initError       error
)

func InitFirebase(credentialsPath string) error {
	once.Do(func() {
		ctx := context.Background()

		log.Printf("[FCM] Initializing Firebase with credentials: %s", credentialsPath)

		opt := option.WithCredentialsFile(credentialsPath)
		app, err := firebase.NewApp(ctx, nil, opt)
		if err != nil {
			initError = err
			log.Printf("[FCM][ERROR] Failed to init Firebase app: %v", err)
			return
		}

		messagingClient, err = app.Messaging(ctx)
		if err != nil {
			initError = err
			log.Printf("[FCM][ERROR] Failed to get messaging client: %v", err)
			return
		}

		log.Println("[FCM] Firebase Messaging client initialized successfully")
	})

	return initError
}

func GetMessagingClient() (*messaging.Client, error) {
	if messagingClient == nil {
		log.Printf("[FCM][ERROR] Messaging client is nil (initError=%v)", initError)
		if initError == nil {
			return nil, fmt.Errorf("firebase messaging not initialized")
		}
		return nil, initError
	}
	return messagingClient, nil
}

// Alerter tells moderators about confessions that need review.
type Alerter interface {
	HighlyReported(ctx context.Context, c models.Confession) error
	Digest(ctx context.Context, flagged []models.Confession) error
}

type NoopAlerter struct{}

func (NoopAlerter) HighlyReported(context.Context, models.Confession) error { return nil }
func (NoopAlerter) Digest(context.Context, []models.Confession) error       { return nil }

type topicSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TopicAlerter pushes moderation alerts to every device subscribed to an
// FCM topic.
type TopicAlerter struct {
	client topicSender
	topic  string
}

func NewTopicAlerter(topic string) (*TopicAlerter, error) {
	client, err := GetMessagingClient()
	if err != nil {
		return nil, err
	}
	return &TopicAlerter{client: client, topic: topic}, nil
}

func (a *TopicAlerter) send(ctx context.Context, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Topic: a.topic,
	}

	response, err := a.client.Send(ctx, message)
	if err != nil {
		log.Printf("[FCM][ERROR] Topic send to %s failed: %v", a.topic, err)
		return err
	}

	log.Printf("[FCM] Sent to topic %s: %s", a.topic, response)
	return nil
}

func (a *TopicAlerter) HighlyReported(ctx context.Context, c models.Confession) error {
	mood := models.MoodByValue(string(c.Mood))
	body := fmt.Sprintf("%s %q has %d reports", mood.Emoji, preview(c.Text, 60), c.ReportCount)

	return a.send(ctx, "Confession needs review", body, map[string]string{
		"type":          "highly_reported",
		"confession_id": c.ID,
		"report_count":  strconv.Itoa(c.ReportCount),
	})
}

func (a *TopicAlerter) Digest(ctx context.Context, flagged []models.Confession) error {
	if len(flagged) == 0 {
		log.Println("[FCM] Nothing to moderate, digest skipped")
		return nil
	}

	body := fmt.Sprintf("%d confessions have %d or more reports", len(flagged), models.HighlyReportedMinimum)
	if len(flagged) == 1 {
		body = fmt.Sprintf("1 confession has %d or more reports", models.HighlyReportedMinimum)
	}

	return a.send(ctx, "Moderation queue", body, map[string]string{
		"type":  "moderation_digest",
		"count": strconv.Itoa(len(flagged)),
		"top":   flagged[0].ID,
	})
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
