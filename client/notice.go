package client

// Level is the severity of a notice
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notice is a user-facing message about the outcome of an operation
type Notice struct {
	Level   Level
	Message string
}

const (
	MsgLoaded             = "events loaded"
	MsgAdded              = "event added"
	MsgUpdated            = "event updated"
	MsgDeleted            = "event deleted"
	MsgSeriesUpdated      = "all recurring events updated"
	MsgSaveFailed         = "failed to save event"
	MsgDeleteFailed       = "failed to delete event"
	MsgLoadFailed         = "failed to load events"
	MsgSeriesUpdateFailed = "failed to update recurring events"
)

// Notifier presents notices to the user
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }
