package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wastewise/binreminder/internal/config"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
)

type fcmNotifier struct {
	endpoint  string
	serverKey string
	client    *http.Client
}

func NewFCMNotifier(cfg config.PushConfig) Notifier {
	return &fcmNotifier{
		endpoint:  cfg.Endpoint,
		serverKey: cfg.ServerKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmMessage struct {
	To           string            `json:"to"`
	Priority     string            `json:"priority"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		Error string `json:"error"`
	} `json:"results"`
}

func (n *fcmNotifier) Send(ctx context.Context, payload Payload) error {
	msg := fcmMessage{
		To:       payload.DeviceToken,
		Priority: "high",
		Notification: fcmNotification{
			Title: payload.Title,
			Body:  payload.Body,
			Sound: "default",
		},
		Data: map[string]string{
			"category":        payload.Category,
			"body_color":      payload.BodyColor,
			"head_color":      payload.HeadColor,
			"collection_date": payload.CollectionDate,
			"type":            "collection_reminder",
		},
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+n.serverKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", appErr.ErrDelivery, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: fcm status %d", appErr.ErrDelivery, resp.StatusCode)
	}
	var parsed fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("%w: decode fcm response: %v", appErr.ErrDelivery, err)
	}
	if parsed.Failure > 0 && len(parsed.Results) > 0 {
		switch parsed.Results[0].Error {
		case "InvalidRegistration", "NotRegistered", "MissingRegistration":
			return ErrInvalidRecipient
		default:
			return fmt.Errorf("%w: fcm error %s", appErr.ErrDelivery, parsed.Results[0].Error)
		}
	}
	return nil
}
