package transcript

import "time"

// Sender identifies who authored a logged turn.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Entry is one row of the append-only chat log. Insertion order (the ID
// column) is the transcript order.
type Entry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string    `gorm:"size:64;index" json:"session_id"`
	Sender    string    `gorm:"size:8" json:"sender"`
	Message   string    `gorm:"type:text" json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TableName keeps the historical table name used by earlier deployments.
func (Entry) TableName() string { return "chat_logs" }
