package model

import "time"

// Cue identifies which bell the timer asks for.
type Cue string

const (
	CueStart      Cue = "start"
	CueInterval   Cue = "interval"
	CueCompletion Cue = "completion"
)

// CompletedSession is handed to the session store on save.
type CompletedSession struct {
	DurationSeconds int
	PracticeType    string
	Notes           string
}

// SessionRecord is a stored meditation session.
type SessionRecord struct {
	ID              string
	StartedAt       time.Time
	EndedAt         time.Time
	DurationSeconds int
	PracticeType    string
	Completed       bool
	Notes           string
}

// PracticeTotals summarises stored sessions.
type PracticeTotals struct {
	Sessions       int
	TotalSeconds   int
	JournalEntries int
}

// JournalEntry is a journal row created from session notes.
type JournalEntry struct {
	ID           string
	Title        string
	Content      string
	Tags         []string
	PracticeType string
	CreatedAt    time.Time
}
