package memory

import (
	"time"

	"github.com/google/uuid"
)

// NewRecord creates a record with a random ID stamped at createdAt.
// Stores without their own key generation use it.
func NewRecord(text string, createdAt time.Time) Record {
	return Record{
		ID:        uuid.New().String(),
		Text:      text,
		CreatedAt: createdAt,
	}
}

// Texts returns the text of each record, in order.
func Texts(records []Record) []string {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	return texts
}
