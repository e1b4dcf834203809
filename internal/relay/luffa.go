package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Luffa is the HTTP robot relay: receive is polled with the bot secret, and
// replies go to sendGroup.
type Luffa struct {
	secret     string
	receiveURL string
	sendURL    string
	httpClient *http.Client
}

func NewLuffa(secret, receiveURL, sendURL string, timeout time.Duration) *Luffa {
	return &Luffa{
		secret:     secret,
		receiveURL: receiveURL,
		sendURL:    sendURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type luffaEnvelope struct {
	UID     *string  `json:"uid"`
	Message []string `json:"message"`
}

type luffaPayload struct {
	UID  *string `json:"uid"`
	Text *string `json:"text"`
}

type luffaSend struct {
	Secret string `json:"secret"`
	UID    string `json:"uid"`
	Msg    string `json:"msg"`
	Type   string `json:"type"`
}

func (l *Luffa) Fetch(ctx context.Context) ([]Inbound, error) {
	body, err := l.post(ctx, l.receiveURL, map[string]string{"secret": l.secret})
	if err != nil {
		return nil, fmt.Errorf("luffa receive: %w", err)
	}
	var envelopes []luffaEnvelope
	if err := json.Unmarshal(body, &envelopes); err != nil {
		return nil, fmt.Errorf("decode luffa receive response: %w", err)
	}

	var out []Inbound
	for _, env := range envelopes {
		group := ""
		if env.UID != nil {
			group = *env.UID
		}
		for _, raw := range env.Message {
			var p luffaPayload
			if err := json.Unmarshal([]byte(raw), &p); err != nil {
				log.Printf("⚠️ skipping malformed payload in group %s: %v", group, err)
				continue
			}
			in := Inbound{Group: group}
			if p.UID != nil {
				in.Sender = *p.UID
			}
			if p.Text != nil {
				in.Text = *p.Text
			}
			out = append(out, in)
		}
	}
	return out, nil
}

func (l *Luffa) Send(ctx context.Context, group, text string) error {
	msg, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	_, err = l.post(ctx, l.sendURL, luffaSend{
		Secret: l.secret,
		UID:    group,
		Msg:    string(msg),
		Type:   "1",
	})
	if err != nil {
		return fmt.Errorf("luffa sendGroup: %w", err)
	}
	return nil
}

func (l *Luffa) post(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("relay error %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
