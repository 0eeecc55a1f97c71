package helpers

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

type FileLogger struct {
	logger *log.Logger
}

func NewFileLogger() *FileLogger {
	plainFormatter := new(PlainFormatter)
	plainFormatter.TimestampFormat = "2006-01-02 15:04:05"
	plainFormatter.LevelDesc = []string{"PANIC", "FATAL", "ERROR", "WARN ", "INFO ", "DEBUG", "TRACE"}
	logger := log.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(plainFormatter)
	logger.SetLevel(log.InfoLevel)
	return &FileLogger{logger: logger}
}

var Logger = NewFileLogger()

// ConfigureLogger sets level, format ("plain" or "json") and output file of the shared Logger.
// An empty logFile keeps stdout.
func ConfigureLogger(level string, format string, logFile string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "plain":
	case "json":
		Logger.logger.SetFormatter(&log.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("error opening log file: %w", err)
		}
		Logger.logger.SetOutput(io.MultiWriter(os.Stdout, f))
	}
	return nil
}

// SetOutput redirects the shared Logger, mostly for tests
func (l *FileLogger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

func (l *FileLogger) WithFields(fields log.Fields) *log.Entry {
	return l.logger.WithFields(fields)
}

// Printf lets libraries that expect a printf logger, such as gorm, write warnings to the shared Logger
func (l *FileLogger) Printf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *FileLogger) Errorln(args ...interface{}) {
	l.logger.Errorln(args...)
}

func (l *FileLogger) Fatalln(args ...interface{}) {
	l.logger.Fatalln(args...)
}

func (l *FileLogger) Panicln(args ...interface{}) {
	l.logger.Panicln(args...)
}

func (l *FileLogger) Warnln(args ...interface{}) {
	l.logger.Warnln(args...)
}

func (l *FileLogger) Infoln(args ...interface{}) {
	l.logger.Infoln(args...)
}

func (l *FileLogger) Traceln(args ...interface{}) {
	l.logger.Traceln(args...)
}

func (l *FileLogger) Debugln(args ...interface{}) {
	l.logger.Debugln(args...)
}

type PlainFormatter struct {
	TimestampFormat string
	LevelDesc       []string
}

func (f PlainFormatter) Format(entry *log.Entry) ([]byte, error) {
	timestamp := entry.Time.Format(f.TimestampFormat)
	line := fmt.Sprintf("%s %s %s", f.LevelDesc[entry.Level], timestamp, strings.TrimSuffix(entry.Message, "\n"))

	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		line += fmt.Sprintf(" %s=%v", key, entry.Data[key])
	}
	return []byte(line + "\n"), nil
}
