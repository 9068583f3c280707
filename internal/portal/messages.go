package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sovahealth/courier/internal/models"
)

// decodeObject unwraps single-record responses, tolerating the same
// {"data":{...}} wrapper some endpoints use.
func decodeObject(data []byte, out any) error {
	data = bytes.TrimSpace(data)
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &env); err == nil && len(env.Data) > 0 && env.Data[0] == '{' {
			data = env.Data
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

func (c *Client) markMine(msgs []models.Message, threadID models.ID) {
	for i := range msgs {
		msgs[i].IsMine = msgs[i].SenderID == c.viewerID && c.viewerID != ""
		if msgs[i].ThreadID == "" {
			msgs[i].ThreadID = threadID
		}
	}
}

// ListMessages fetches a thread's messages, ascending by time. A 404
// means an empty thread, not a failure.
func (c *Client) ListMessages(ctx context.Context, threadID models.ID, limit int) ([]models.Message, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/messages/threads/" + url.PathEscape(string(threadID)) + "/messages"
	data, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	msgs, err := decodeList[models.Message](data)
	if err != nil {
		return nil, err
	}
	c.markMine(msgs, threadID)
	return msgs, nil
}

// SendMessage posts a new message and returns the created record as the
// server stored it.
func (c *Client) SendMessage(ctx context.Context, threadID models.ID, body string) (*models.Message, error) {
	path := "/api/messages/threads/" + url.PathEscape(string(threadID)) + "/messages"
	payload := map[string]string{"body": body}

	data, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}
	return c.decodeMessage(data, threadID)
}

// EditMessage replaces a message's body and returns the updated record
// (same id).
func (c *Client) EditMessage(ctx context.Context, threadID, messageID models.ID, body string) (*models.Message, error) {
	path := "/api/messages/threads/" + url.PathEscape(string(threadID)) + "/messages/" + url.PathEscape(string(messageID))
	payload := map[string]string{"body": body}

	data, err := c.do(ctx, http.MethodPut, path, nil, payload)
	if err != nil {
		return nil, err
	}
	return c.decodeMessage(data, threadID)
}

// DeleteMessage soft-deletes a message. The server answers with the
// tombstoned record (deleted flag set, same id), which replaces the
// local copy in place.
func (c *Client) DeleteMessage(ctx context.Context, threadID, messageID models.ID) (*models.Message, error) {
	path := "/api/messages/threads/" + url.PathEscape(string(threadID)) + "/messages/" + url.PathEscape(string(messageID))

	data, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeMessage(data, threadID)
}

func (c *Client) decodeMessage(data []byte, threadID models.ID) (*models.Message, error) {
	var msg models.Message
	if err := decodeObject(data, &msg); err != nil {
		return nil, err
	}
	single := []models.Message{msg}
	c.markMine(single, threadID)
	return &single[0], nil
}
