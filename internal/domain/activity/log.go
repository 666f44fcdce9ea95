package activity

import "iter"

// Log is an append-only, insertion-ordered activity log. It is not safe for
// concurrent use; the owning session serializes access.
type Log struct {
	entries []Entry
	nextSeq int64
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{nextSeq: 1}
}

// Append stores entry, assigning its sequence number, and returns the stored copy.
func (l *Log) Append(entry Entry) Entry {
	entry.Seq = l.nextSeq
	l.nextSeq++
	l.entries = append(l.entries, entry)
	return entry
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Clear drops every entry and restarts sequence numbering.
func (l *Log) Clear() {
	l.entries = nil
	l.nextSeq = 1
}

// All yields entries newest-first. Each range reads the live log, so ranging
// again after further appends includes the new entries.
func (l *Log) All() iter.Seq[Entry] {
	return l.List(ListOptions{})
}

// List yields entries newest-first, filtered by opts.
func (l *Log) List(opts ListOptions) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		emitted := 0
		for i := len(l.entries) - 1; i >= 0; i-- {
			if opts.Limit > 0 && emitted >= opts.Limit {
				return
			}
			entry := l.entries[i]
			if opts.ProjectID != "" && entry.ProjectID != opts.ProjectID {
				continue
			}
			emitted++
			if !yield(entry) {
				return
			}
		}
	}
}
