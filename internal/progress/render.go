package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Render drains ch, printing one line per event to w until ch closes.
// When w is a terminal, lines use pterm's colored prefixes; otherwise a
// plain "[stage] status: message" line is written, since pterm's styling
// escape codes are meaningless once redirected to a file or pipe.
func Render(ch <-chan Event, w io.Writer) {
	interactive := false
	if f, ok := w.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	for ev := range ch {
		if interactive {
			renderInteractive(ev, w)
		} else {
			renderPlain(ev, w)
		}
	}
}

func renderInteractive(ev Event, w io.Writer) {
	switch ev.Status {
	case StatusPending:
		fmt.Fprintf(w, "  ○ %s (pending)\n", ev.Stage)
	case StatusWorking:
		fmt.Fprintf(w, "  ● %s...\n", ev.Stage)
	case StatusComplete:
		fmt.Fprint(w, pterm.Success.Sprintfln("%s complete", ev.Stage))
	case StatusFailed:
		fmt.Fprint(w, pterm.Error.Sprintfln("%s failed: %s", ev.Stage, ev.Message))
	default:
		fmt.Fprintf(w, "  ? %s (unknown status)\n", ev.Stage)
	}
}

func renderPlain(ev Event, w io.Writer) {
	if ev.Message != "" {
		fmt.Fprintf(w, "[%s] %s: %s\n", ev.Stage, ev.Status, ev.Message)
		return
	}
	fmt.Fprintf(w, "[%s] %s\n", ev.Stage, ev.Status)
}
