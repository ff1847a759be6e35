package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/message"
)

const messageColumns = `id, content, date, sender_id, recipient_id, read`

var messageOrderColumns = map[string]string{
	"date": "COALESCE(date, '-infinity'::timestamptz)",
	"read": "read",
}

type messageRow struct {
	ID          string    `db:"id"`
	Content     string    `db:"content"`
	Date        null.Time `db:"date"`
	SenderID    string    `db:"sender_id"`
	RecipientID string    `db:"recipient_id"`
	Read        bool      `db:"read"`
}

func toMessageRow(m message.Message) messageRow {
	return messageRow{
		ID:          m.ID,
		Content:     m.Content,
		Date:        utcNull(m.Date),
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Read:        m.Read,
	}
}

func (r messageRow) message() message.Message {
	return message.Message{
		ID:          r.ID,
		Content:     r.Content,
		Date:        utcNull(r.Date),
		SenderID:    r.SenderID,
		RecipientID: r.RecipientID,
		Read:        r.Read,
	}
}

type messageRepository struct {
	repository
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(exec core.DBExecutor) *messageRepository {
	return &messageRepository{repository{exec: exec}}
}

func (repo messageRepository) CreateMessage(ctx context.Context, m message.Message, exec ...core.DBExecutor) (message.Message, error) {
	m.ID = newID()
	q := `INSERT INTO message (` + messageColumns + `)
		VALUES (:id, :content, :date, :sender_id, :recipient_id, :read)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toMessageRow(m)); err != nil {
		return message.Message{}, errors.Wrap(err, "inserting message")
	}
	return m, nil
}

func (repo messageRepository) QueryMessages(ctx context.Context, filter *message.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]message.Message, error) {
	c := new(conditions)
	if filter != nil {
		if !validRefs(filter.UserID, filter.CounterpartID, filter.RecipientID) {
			return []message.Message{}, nil
		}
		switch {
		case filter.UserID != "" && filter.CounterpartID != "":
			c.add(
				"(sender_id = ?::uuid AND recipient_id = ?::uuid) OR (sender_id = ?::uuid AND recipient_id = ?::uuid)",
				filter.UserID, filter.CounterpartID, filter.CounterpartID, filter.UserID,
			)
		case filter.UserID != "":
			c.add("sender_id = ?::uuid OR recipient_id = ?::uuid", filter.UserID, filter.UserID)
		}
		if filter.RecipientID != "" {
			c.add("recipient_id = ?::uuid", filter.RecipientID)
		}
		if filter.UnreadOnly {
			c.add("NOT read")
		}
	}

	var rows []messageRow
	q := `SELECT ` + messageColumns + ` FROM message`
	if err := selectRows(ctx, repo.getExec(exec), &rows, q, c, orderBy(ordering, messageOrderColumns)); err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}

	msgs := make([]message.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.message())
	}
	return msgs, nil
}

func (repo messageRepository) GetMessage(ctx context.Context, id string, exec ...core.DBExecutor) (message.Message, error) {
	if !validID(id) {
		return message.Message{}, message.ErrNotFound
	}
	var row messageRow
	q := `SELECT ` + messageColumns + ` FROM message WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return message.Message{}, trapNoRowsErr(err, message.ErrNotFound, "finding message")
	}
	return row.message(), nil
}

func (repo messageRepository) MarkRead(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	q := `UPDATE message SET read = TRUE WHERE id = ANY($1::uuid[])`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, pq.Array(validIDs(ids))); err != nil {
		return errors.Wrap(err, "marking messages read")
	}
	return nil
}

func (repo messageRepository) DeleteMessages(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	q := `DELETE FROM message WHERE id = ANY($1::uuid[])`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, pq.Array(validIDs(ids))); err != nil {
		return errors.Wrap(err, "deleting messages")
	}
	return nil
}
