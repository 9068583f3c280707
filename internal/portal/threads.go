package portal

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sovahealth/courier/internal/models"
)

// ListThreads fetches the clinician's message threads. When
// includeParticipants is set the API embeds participant records, which
// identity resolution prefers over the denormalized thread fields.
// A 404 means the clinician has no threads yet, not a failure.
func (c *Client) ListThreads(ctx context.Context, includeParticipants bool) ([]models.Thread, error) {
	query := url.Values{}
	if includeParticipants {
		query.Set("include", "participants")
	}

	data, err := c.do(ctx, http.MethodGet, "/api/messages/threads", query, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return decodeList[models.Thread](data)
}

// GetThread fetches a single thread with its participants fully
// populated.
func (c *Client) GetThread(ctx context.Context, id models.ID) (*models.Thread, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/messages/threads/"+url.PathEscape(string(id)), nil, nil)
	if err != nil {
		return nil, err
	}

	var thread models.Thread
	if err := decodeObject(data, &thread); err != nil {
		return nil, err
	}
	return &thread, nil
}

// MarkThreadRead tells the portal the clinician has seen the thread. The
// local unread count is reset when this is called, not when it returns,
// so callers treat failures as best-effort.
func (c *Client) MarkThreadRead(ctx context.Context, id models.ID) error {
	_, err := c.do(ctx, http.MethodPost, "/api/messages/threads/"+url.PathEscape(string(id))+"/read", nil, nil)
	return err
}
