package core

// Logger is the app-wide event sink. The variadic args accept an error,
// the acting user or a map of extra context, in any order; implementations
// sort out what they were given.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
