package session

import (
	"sync"
	"time"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

const defaultNoticeCapacity = 64

// Notice is a transient message for the user ("cloud data adopted", ...).
type Notice struct {
	Seq     uint64    `json:"seq"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// noticeLog is a bounded ring; the oldest notices are dropped first.
type noticeLog struct {
	mu    sync.Mutex
	buf   []Notice
	start int
	size  int
	seq   uint64
}

func newNoticeLog(capacity int) *noticeLog {
	return &noticeLog{buf: make([]Notice, capacity)}
}

func (l *noticeLog) add(level Level, message string, at time.Time) Notice {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	n := Notice{Seq: l.seq, Level: level, Message: message, At: at}

	if l.size < len(l.buf) {
		l.buf[(l.start+l.size)%len(l.buf)] = n
		l.size++
	} else {
		l.buf[l.start] = n
		l.start = (l.start + 1) % len(l.buf)
	}
	return n
}

func (l *noticeLog) since(after uint64) []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Notice, 0, l.size)
	for i := 0; i < l.size; i++ {
		n := l.buf[(l.start+i)%len(l.buf)]
		if n.Seq > after {
			out = append(out, n)
		}
	}
	return out
}
