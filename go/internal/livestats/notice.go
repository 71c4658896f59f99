package livestats

import "time"

// NoticeLevel is the severity of a transient notification
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a transient, user-visible notification. Failures are reported
// only this way; nothing in the game state is marked as failed.
type Notice struct {
	Level   NoticeLevel
	Message string
	At      time.Time
}
