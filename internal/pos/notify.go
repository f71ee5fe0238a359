package pos

type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "info"
}

// Notice is a user-facing message. Err is set for validation and backend failures.
type Notice struct {
	Level   Level
	Message string
	Err     error
}

// Notifier receives every user-facing message of a session. Asynchronous sync
// failures have no caller, so this is their only channel. Implementations
// must not call back into the session.
type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}
