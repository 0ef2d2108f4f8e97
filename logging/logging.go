package logging

import (
	"encoding/json"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bartossh/Mercantis/logger"
)

// Helper writes logs to io.Writers.
// Helper implements the logger.Logger interface.
// Writing happens concurrently without blocking the caller.
type Helper struct {
	callOnErr func(error)
	writers   []io.Writer
}

// New creates new Helper.
func New(callOnErr func(error), writers ...io.Writer) Helper {
	return Helper{callOnErr: callOnErr, writers: writers}
}

// Debug writes debug log.
func (h Helper) Debug(msg string) {
	h.write("debug", msg)
}

// Info writes info log.
func (h Helper) Info(msg string) {
	h.write("info", msg)
}

// Warn writes warning log.
func (h Helper) Warn(msg string) {
	h.write("warn", msg)
}

// Error writes error log.
func (h Helper) Error(msg string) {
	h.write("error", msg)
}

// Fatal writes fatal log.
func (h Helper) Fatal(msg string) {
	h.write("fatal", msg)
}

func (h Helper) write(level, msg string) {
	l := logger.Log{
		ID:        primitive.NewObjectID(),
		Level:     level,
		Msg:       msg,
		CreatedAt: time.Now(),
	}
	go func() {
		raw, err := json.Marshal(&l)
		if err != nil {
			h.callOnErr(err)
			return
		}
		for _, w := range h.writers {
			if _, err := w.Write(raw); err != nil {
				h.callOnErr(err)
			}
		}
	}()
}
