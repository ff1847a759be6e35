package message

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/user"
)

type Message struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Date        null.Time `json:"date"` // UTC
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Read        bool      `json:"read"`
}

// Counterpart returns the other party of m as seen by userID, and whether userID takes part in m at all.
func (m Message) Counterpart(userID string) (string, bool) {
	switch userID {
	case m.SenderID:
		return m.RecipientID, true
	case m.RecipientID:
		return m.SenderID, true
	}
	return "", false
}

type NewMessage struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.RecipientID = core.CleanString(nm.RecipientID)
	nm.Content = core.CleanString(nm.Content)
	return validate.Struct(nm)
}

// Conversation summarizes the exchange between the current user and one counterpart.
type Conversation struct {
	Counterpart user.User `json:"counterpart"`
	Latest      Message   `json:"latest"`
	Unread      bool      `json:"unread"`
}

type QueryFilter struct {
	UserID        string // messages sent or received by the user
	CounterpartID string // with UserID: only messages exchanged between both
	RecipientID   string
	UnreadOnly    bool
}
