package harness

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Render writes one line per result ("state0 -> left: OK"), failure details
// indented below, and a closing summary. color adds ANSI colors to the
// verdicts.
func (r *Report) Render(w io.Writer, color bool) error {
	bw := bufio.NewWriter(w)

	passed, failed := 0, 0
	for _, res := range r.All() {
		verdict := "OK"
		if res.Pass {
			passed++
		} else {
			failed++
			verdict = "FAIL"
		}
		if color {
			c := ansiGreen
			if !res.Pass {
				c = ansiRed
			}
			verdict = c + verdict + ansiReset
		}

		fmt.Fprintf(bw, "%s: %s\n", res.Path(), verdict)
		if !res.Pass {
			for _, line := range strings.Split(res.Message, "\n") {
				fmt.Fprintf(bw, "  %s\n", line)
			}
		}
	}
	fmt.Fprintf(bw, "%d passed, %d failed\n", passed, failed)
	return bw.Flush()
}

// String renders the report without colors.
func (r *Report) String() string {
	var sb strings.Builder
	_ = r.Render(&sb, false)
	return sb.String()
}
