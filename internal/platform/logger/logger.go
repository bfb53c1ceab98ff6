// Package logger provides structured logging for the game server.
// Player-visible state never depends on anything logged here.
package logger

import (
	"log"
	"os"
)

// Logger provides leveled logging with a shared format.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a new logger instance.
func NewLogger() *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "[GUMSHOE-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(os.Stdout, "[GUMSHOE-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(os.Stderr, "[GUMSHOE-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.infoLogger.Println(msg)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	l.warnLogger.Println(msg)
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	l.errorLogger.Println(msg)
}

// Action logs a room action in a grep-friendly shape for the audit trail.
func (l *Logger) Action(action string, roomID string, details string) {
	l.infoLogger.Printf("[ACTION:%s] Room:%s | %s", action, roomID, details)
}
