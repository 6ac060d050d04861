package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/nikolayk812/agrocart/internal/domain"
	"github.com/nikolayk812/agrocart/internal/port"
)

// ConsoleNotifier prints notices for the user and forwards them to next.
type ConsoleNotifier struct {
	mu   sync.Mutex
	out  io.Writer
	next port.Notifier
}

func NewConsoleNotifier(out io.Writer, next port.Notifier) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, next: next}
}

func (n *ConsoleNotifier) Notify(notice domain.Notice) {
	n.mu.Lock()
	fmt.Fprintf(n.out, "%s: %s\n", notice.Level, notice.Message)
	n.mu.Unlock()

	if n.next != nil {
		n.next.Notify(notice)
	}
}
