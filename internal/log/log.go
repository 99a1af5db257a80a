// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// EnvLevel names the environment variable read by InitLogger.
const EnvLevel = "SNAPDIFF_LOG"

// tracePrefix marks trace messages, which apex carries at debug level.
const tracePrefix = "TRACE: "

var levels = map[string]log.Level{
	"trace": log.DebugLevel,
	"debug": log.DebugLevel,
	"info":  log.InfoLevel,
	"warn":  log.WarnLevel,
	"error": log.ErrorLevel,
	"fatal": log.FatalLevel,
}

var letters = map[log.Level]string{
	log.DebugLevel: "D",
	log.InfoLevel:  "I",
	log.WarnLevel:  "W",
	log.ErrorLevel: "E",
	log.FatalLevel: "F",
}

var (
	traceEnabled bool

	outMu sync.Mutex
	out   io.Writer = os.Stderr
)

// InitLogger installs CustomHandler at the level named by SNAPDIFF_LOG,
// error when unset.
func InitLogger() {
	SetLevel(strings.ToLower(os.Getenv(EnvLevel)))
	log.SetHandler(&CustomHandler{})
}

// SetLevel applies a level name. Anything unrecognised means error.
func SetLevel(level string) {
	traceEnabled = level == "trace"
	l, ok := levels[level]
	if !ok {
		l = log.ErrorLevel
	}
	log.SetLevel(l)
}

// SetOutput swaps the handler's writer and returns the old one. Diffs own
// stdout, so logs start on stderr.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	return prev
}

// CustomHandler writes one "timestamp letter message" line per entry.
type CustomHandler struct{}

// HandleLog implements log.Handler.
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	letter, msg := letters[e.Level], e.Message
	if rest, ok := strings.CutPrefix(msg, tracePrefix); ok {
		letter, msg = "T", rest
	}
	if letter == "" {
		letter = "?"
	}
	if err, ok := e.Fields["error"]; ok {
		msg += fmt.Sprintf(": err=%v", err)
	}

	outMu.Lock()
	defer outMu.Unlock()
	_, err := fmt.Fprintf(out, "%s %s %s\n", time.Now().Format(time.DateTime), letter, msg)
	return err
}

// Tracef logs below debug. It is dropped unless the level is trace.
func Tracef(format string, args ...interface{}) {
	if traceEnabled {
		log.Debug(tracePrefix + fmt.Sprintf(format, args...))
	}
}

func Debugf(format string, args ...interface{}) { log.Debugf(format, args...) }

func Debug(msg string) { log.Debug(msg) }

func Infof(format string, args ...interface{}) { log.Infof(format, args...) }

func Info(msg string) { log.Info(msg) }

func Warnf(format string, args ...interface{}) { log.Warnf(format, args...) }

func Errorf(format string, args ...interface{}) { log.Errorf(format, args...) }

// WithError starts an entry carrying err, rendered as err=<value>.
func WithError(err error) *log.Entry {
	return log.WithError(err)
}
