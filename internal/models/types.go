package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ID is an opaque record identifier. The portal API is inconsistent about
// whether ids arrive as JSON strings or numbers; both decode to the string
// form so ids stay comparable across endpoints.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

type PatientProfile struct {
	ID        ID     `json:"id,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// FullName joins first and last name with a single space, dropping empty
// parts. Returns "" when both are empty.
func (p PatientProfile) FullName() string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(p.FirstName); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(p.LastName); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

type Participant struct {
	ID       ID              `json:"id"`
	Role     string          `json:"role,omitempty"`
	Name     string          `json:"name,omitempty"`
	Username string          `json:"username,omitempty"`
	Patient  *PatientProfile `json:"patient,omitempty"`
}

type Thread struct {
	ID                 ID              `json:"id"`
	Subject            string          `json:"subject,omitempty"`
	Participants       []Participant   `json:"participants,omitempty"`
	LastMessageSnippet string          `json:"lastMessageSnippet,omitempty"`
	LastMessage        *Message        `json:"lastMessage,omitempty"`
	LastMessageAt      *time.Time      `json:"lastMessageAt,omitempty"`
	LastActivityAt     *time.Time      `json:"lastActivityAt,omitempty"`
	UpdatedAt          *time.Time      `json:"updatedAt,omitempty"`
	UnreadCount        int             `json:"unreadCount,omitempty"`
	PatientID          ID              `json:"patientId,omitempty"`
	PatientName        string          `json:"patientName,omitempty"`
	Patient            *PatientProfile `json:"patient,omitempty"`
}

type Message struct {
	ID          ID         `json:"id"`
	ThreadID    ID         `json:"threadId,omitempty"`
	SenderID    ID         `json:"senderId,omitempty"`
	Body        string     `json:"body"`
	SentAt      time.Time  `json:"sentAt"`
	EditedAt    *time.Time `json:"editedAt,omitempty"`
	Deleted     bool       `json:"deleted,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	ReadAt      *time.Time `json:"readAt,omitempty"`

	// IsMine is derived client-side from SenderID and the signed-in
	// clinician's id; the API does not send it.
	IsMine bool `json:"-"`
}
