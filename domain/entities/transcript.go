package entities

import "time"

// TranscriptRecord is one transcribed and translated utterance from a call
// leg. Records are kept in a bounded in-memory window for the polling UI;
// they are never persisted.
type TranscriptRecord struct {
	RoomID      string    `json:"room_id"`
	LegType     string    `json:"leg_type"`
	Transcript  string    `json:"transcript"`
	Translation string    `json:"translation"`
	FromLang    string    `json:"from_lang"`
	ToLang      string    `json:"to_lang"`
	Timestamp   time.Time `json:"timestamp"`
}
