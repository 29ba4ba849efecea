package notification

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type FCMService struct {
	client *messaging.Client
}

// NewFCMService builds the Firebase messaging client. Credentials come from
// FCM_SERVICE_ACCOUNT_JSON (base64 of the service account JSON) or, failing
// that, a key file on disk.
func NewFCMService(keyFilePath string) (*FCMService, error) {
	opt, err := credentialsOption(keyFilePath)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		return nil, fmt.Errorf("firebase messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

func credentialsOption(keyFilePath string) (option.ClientOption, error) {
	if encoded := os.Getenv("FCM_SERVICE_ACCOUNT_JSON"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("FCM_SERVICE_ACCOUNT_JSON is not valid base64: %w", err)
		}
		log.Println("FCM: using credentials from FCM_SERVICE_ACCOUNT_JSON")
		return option.WithCredentialsJSON(decoded), nil
	}

	if _, err := os.Stat(keyFilePath); err != nil {
		return nil, fmt.Errorf("no FCM credentials: FCM_SERVICE_ACCOUNT_JSON unset and %s not readable", keyFilePath)
	}
	log.Printf("FCM: using credentials file %s", keyFilePath)
	return option.WithCredentialsFile(keyFilePath), nil
}

// SendPush delivers one message per device token. Sends are sequential; the
// FCM batch endpoint has been unreliable for us.
func (s *FCMService) SendPush(ctx context.Context, tokens []DeviceToken, title, body string, data map[string]any) error {
	stringData := make(map[string]string, len(data))
	for k, v := range data {
		stringData[k] = fmt.Sprintf("%v", v)
	}

	delivered, failed := 0, 0
	for _, t := range tokens {
		if t.Platform != "android" && t.Platform != "" {
			continue
		}

		msg := &messaging.Message{
			Token: t.Token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: stringData,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					Sound: "default",
				},
			},
		}

		if _, err := s.client.Send(ctx, msg); err != nil {
			log.Printf("FCM: send to %s failed: %v", t.Token, err)
			failed++
			continue
		}
		delivered++
	}

	if delivered+failed > 0 {
		log.Printf("FCM: delivered %d, failed %d", delivered, failed)
	}
	if delivered == 0 && failed > 0 {
		return fmt.Errorf("every push delivery failed")
	}
	return nil
}
