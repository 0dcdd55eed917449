package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

const (
	permission = 0664
)

type LogBuild struct {
	writer io.Writer
	path   string
	level  zerolog.Level
	pretty bool
}

type LogData struct {
	LogFile *os.File
	Logger  zerolog.Logger
}

func New() *LogBuild {
	return &LogBuild{writer: os.Stdout, level: zerolog.InfoLevel}
}

func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

func (build *LogBuild) Level(level string) *LogBuild {
	if lv, err := zerolog.ParseLevel(level); err == nil && level != "" {
		build.level = lv
	}
	return build
}

func (build *LogBuild) Pretty(on bool) *LogBuild {
	build.pretty = on
	return build
}

func (build *LogBuild) Make() (logData *LogData, err error) {
	logData = new(LogData)
	writer := build.writer
	if build.path != "" {
		logData.LogFile, err = os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		writer = zerolog.SyncWriter(logData.LogFile)
	}
	if build.pretty {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: "2006-01-02 15:04:05"}
	}
	logData.Logger = zerolog.New(writer).Level(build.level).With().Timestamp().Logger()
	return
}

var (
	mu     sync.RWMutex
	global = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Init memasang logger proses dari ENV: LOG_LEVEL, LOG_FILE, LOG_PRETTY.
func Init() error {
	b := New().
		Level(os.Getenv("LOG_LEVEL")).
		Pretty(os.Getenv("LOG_PRETTY") == "true")
	if p := os.Getenv("LOG_FILE"); p != "" {
		b = b.FromPath(p)
	}
	data, err := b.Make()
	if err != nil {
		return err
	}
	Set(data.Logger)
	return nil
}

func Set(l zerolog.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

// L mengembalikan logger proses.
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Component: logger turunan dengan field component.
func Component(name string) zerolog.Logger {
	return L().With().Str("component", name).Logger()
}
