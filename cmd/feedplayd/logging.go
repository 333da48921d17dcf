package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// newLogger builds the daemon logger: console output, plus a rotating file
// when path is set. The file is rotated on SIGHUP. The returned closer stops
// rotation and releases the file.
func newLogger(level, path string) (zerolog.Logger, io.Closer) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	closer := io.Closer(closerFunc(func() error { return nil }))
	if path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxAge:     7,  // days
			MaxSize:    10, // megabytes
			MaxBackups: 3,  // files
		}
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		go func() {
			for range hup {
				_ = lj.Rotate()
			}
		}()
		out = zerolog.MultiLevelWriter(out, lj)
		closer = closerFunc(func() error {
			signal.Stop(hup)
			close(hup)
			return lj.Close()
		})
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), closer
}
