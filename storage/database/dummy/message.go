package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/message"
)

type messageRepository struct {
	db *DB
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *DB) message.Repository {
	return &messageRepository{db: db}
}

func (repo *messageRepository) CreateMessage(_ context.Context, m message.Message, exec ...core.DBExecutor) (message.Message, error) {
	defer repo.db.lock(exec)()

	m.ID = newID()
	repo.db.t.messages[m.ID] = m
	return m, nil
}

func (repo *messageRepository) QueryMessages(_ context.Context, filter *message.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]message.Message, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	msgs := make([]message.Message, 0)
	for _, m := range repo.db.t.messages {
		if filter != nil {
			if filter.UserID != "" {
				cp, ok := m.Counterpart(filter.UserID)
				if !ok || (filter.CounterpartID != "" && cp != filter.CounterpartID) {
					continue
				}
			}
			if filter.RecipientID != "" && m.RecipientID != filter.RecipientID {
				continue
			}
			if filter.UnreadOnly && m.Read {
				continue
			}
		}
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })

	orderBy(msgs, ordering, func(i, j int, field string) (int, bool) {
		a, b := msgs[i], msgs[j]
		switch field {
		case "date":
			return cmpNullTimes(a.Date, b.Date), true
		case "read":
			return cmpBools(a.Read, b.Read), true
		}
		return 0, false
	})
	return msgs, nil
}

func (repo *messageRepository) GetMessage(_ context.Context, id string, _ ...core.DBExecutor) (message.Message, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if m, ok := repo.db.t.messages[id]; ok {
		return m, nil
	}
	return message.Message{}, message.ErrNotFound
}

func (repo *messageRepository) MarkRead(_ context.Context, ids []string, exec ...core.DBExecutor) error {
	defer repo.db.lock(exec)()

	for _, id := range ids {
		if m, ok := repo.db.t.messages[id]; ok {
			m.Read = true
			repo.db.t.messages[id] = m
		}
	}
	return nil
}

func (repo *messageRepository) DeleteMessages(_ context.Context, ids []string, exec ...core.DBExecutor) error {
	defer repo.db.lock(exec)()

	for _, id := range ids {
		delete(repo.db.t.messages, id)
	}
	return nil
}
