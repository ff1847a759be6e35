package message

import "sort"

// LatestByCounterpart keeps, per counterpart of userID, the most recent message they exchanged.
// Messages not involving userID are ignored. On equal dates the first message encountered is kept,
// and an undated message never replaces a dated one.
func LatestByCounterpart(messages []Message, userID string) map[string]Message {
	latest := make(map[string]Message)
	for _, m := range messages {
		cp, ok := m.Counterpart(userID)
		if !ok {
			continue
		}
		kept, seen := latest[cp]
		if !seen || isNewer(m, kept) {
			latest[cp] = m
		}
	}
	return latest
}

func isNewer(m, than Message) bool {
	if !m.Date.Valid {
		return false
	}
	return !than.Date.Valid || m.Date.Time.After(than.Date.Time)
}

// SortedCounterparts orders the counterparts of latest by their message date, most recent first.
// Undated messages come last; equal dates are ordered by counterpart id.
func SortedCounterparts(latest map[string]Message) []string {
	ids := make([]string, 0, len(latest))
	for id := range latest {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		mi, mj := latest[ids[i]], latest[ids[j]]
		if isNewer(mi, mj) {
			return true
		}
		if isNewer(mj, mi) {
			return false
		}
		return ids[i] < ids[j]
	})
	return ids
}

// IsUnread reports whether m is addressed to userID and has not been read yet.
func IsUnread(m Message, userID string) bool {
	return !m.Read && m.RecipientID == userID
}
