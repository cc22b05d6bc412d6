package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler manages graceful shutdown with friendly messages.
type InterruptHandler struct {
	writer      io.Writer
	done        chan struct{}
	operation   string
	resumeHint  string
	stopOnce    sync.Once
	mu          sync.Mutex
	interrupted bool
}

// NewInterruptHandler creates a new interrupt handler for the named operation.
func NewInterruptHandler(writer io.Writer, operation string) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	if operation == "" {
		operation = "Operation"
	}
	return &InterruptHandler{
		writer:    writer,
		operation: operation,
		done:      make(chan struct{}),
	}
}

// HandleInterrupts returns a context canceled on SIGINT/SIGTERM or when ctx
// is canceled. A non-empty resumeHint is printed with the interrupt message.
// The returned stop function must be called once the operation finishes;
// after it runs no message is printed.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, resumeHint string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	h.resumeHint = resumeHint

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
		case <-ctx.Done():
		case <-h.done:
			return
		}
		h.mu.Lock()
		select {
		case <-h.done:
		default:
			if !h.interrupted {
				h.interrupted = true
				h.showInterruptMessage()
			}
		}
		h.mu.Unlock()
		cancel()
	}()

	stop := func() {
		h.stopOnce.Do(func() {
			h.mu.Lock()
			close(h.done)
			h.mu.Unlock()
		})
		cancel()
	}
	return ctx, stop
}

// showInterruptMessage displays a friendly interrupt message.
func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning(h.operation+" interrupted!")

	if h.resumeHint != "" {
		msg += "\n" + FormatInfo(h.resumeHint)
	}

	msg += "\n" + FormatInfo("Nothing was half-written. See you later!") + "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
