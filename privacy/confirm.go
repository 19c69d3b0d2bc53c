package privacy

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the user a blocking yes/no question.
type Confirmer interface {
	Confirm(title, question string) bool
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(title, question string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(title, question string) bool {
	return f(title, question)
}

// Answer is a Confirmer that always gives the same reply.
type Answer bool

// Confirm returns the fixed answer.
func (a Answer) Confirm(string, string) bool {
	return bool(a)
}

// PromptConfirmer asks on Out and reads a y/n line from In. Anything other
// than y or yes, including EOF, counts as no.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// Confirm prints the question and reads one answer line.
func (p *PromptConfirmer) Confirm(title, question string) bool {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}

	fmt.Fprintf(p.Out, "%s: %s [y/N] ", title, question)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.Out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
