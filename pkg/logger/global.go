// pkg/logger/global.go
package logger

import (
	"log"
	"sort"
)

var globalLogger *Logger

// InitGlobal создает глобальный логгер. При ошибке прежний логгер остается
func InitGlobal(logPath, logLevel string, debug bool) error {
	l, err := NewLogger(logPath, logLevel, debug)
	if err != nil {
		return err
	}
	globalLogger = l
	return nil
}

// SetGlobal подменяет глобальный логгер
func SetGlobal(l *Logger) {
	globalLogger = l
}

func GetLogger() *Logger {
	return globalLogger
}

// Глобальные методы для удобства
func Debug(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Debug(format, v...)
	}
}

func Info(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Info(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Warn(format, v...)
	}
}

func Error(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Error(format, v...)
	}
}

// Fatal логирует и завершает процесс, даже если глобальный логгер не инициализирован
func Fatal(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Fatal(format, v...)
	}
	log.Fatalf(format, v...)
}

func Status(title string, stats map[string]string) {
	if globalLogger != nil {
		globalLogger.Status(title, stats)
	}
}

func Close() {
	if globalLogger != nil {
		globalLogger.Close()
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
