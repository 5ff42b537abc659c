package golog

import (
	"io"
	"sync"
)

// Handler receives every entry that passes the level check.
type Handler interface {
	Log(e *Entry) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(e *Entry) error

func (h HandlerFunc) Log(e *Entry) error {
	return h(e)
}

// WriterHandler formats entries and writes them to w. Writes are serialized.
func WriterHandler(w io.Writer, fmtr Formatter) Handler {
	return &writerHandler{w: w, fmtr: fmtr}
}

type writerHandler struct {
	mu   sync.Mutex
	w    io.Writer
	fmtr Formatter
}

func (h *writerHandler) Log(e *Entry) error {
	b := h.fmtr.Format(e)
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(b)
	return err
}

// IOHandler sends WARN and more severe entries to err and the rest to out.
func IOHandler(out, err io.Writer, fmtr Formatter) Handler {
	return &ioHandler{out: WriterHandler(out, fmtr), err: WriterHandler(err, fmtr)}
}

type ioHandler struct {
	out, err Handler
}

func (h *ioHandler) Log(e *Entry) error {
	if e.Lvl <= WARN {
		return h.err.Log(e)
	}
	return h.out.Log(e)
}
