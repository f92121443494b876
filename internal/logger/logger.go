package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Stdout belongs to the status line, so nothing here ever writes to it.

var (
	debugMode bool
	writer    io.Writer
	errOut    io.Writer = os.Stderr
)

// Init initializes the logger with a lumberjack rotating file writer.
func Init(logPath string, debug bool) {
	debugMode = debug
	writer = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // MB
		MaxBackups: 5,
		Compress:   false,
	}
}

// SetOutput replaces the log writer and the stderr mirror used by Error.
func SetOutput(w, stderr io.Writer) {
	writer = w
	errOut = stderr
}

func SetDebugMode(enabled bool) {
	debugMode = enabled
}

func IsDebugMode() bool {
	return debugMode
}

func formatEntry(level, message string) string {
	ts := time.Now().Format(time.RFC3339)
	pid := os.Getpid()
	return fmt.Sprintf("[%s] [PID=%d] [%s] %s", ts, pid, level, message)
}

func writeLog(entry string) {
	if writer == nil {
		return
	}
	writer.Write([]byte(entry + "\n"))
}

func Info(message string) {
	writeLog(formatEntry("INFO", message))
}

func Debug(message string) {
	if !debugMode {
		return
	}
	writeLog(formatEntry("DEBUG", message))
}

func Error(message string) {
	entry := formatEntry("ERROR", message)
	if errOut != nil {
		fmt.Fprintln(errOut, entry)
	}
	writeLog(entry)
}
