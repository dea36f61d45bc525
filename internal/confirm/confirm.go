// Package confirm asks the operator yes/no questions.
//
// Commands depend on the Confirmer interface so tests and --yes can
// substitute a fixed answer for the interactive prompt.
package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Confirmer answers a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Always is a Confirmer that gives the same answer without asking.
type Always bool

// Confirm implements Confirmer.
func (a Always) Confirm(context.Context, string) (bool, error) {
	return bool(a), nil
}

// Prompt asks on Out and reads the answer from In, one line at a time.
// "y" and "yes" accept; "n", "no" and an empty line decline; anything else
// repeats the question. End of input declines. Cancelling the context
// abandons the question and returns the context's error.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer

	// pending holds a read left running by a cancelled Confirm; the next
	// Confirm picks up its line.
	pending chan answer
}

type answer struct {
	line string
	err  error
}

// NewPrompt returns a Prompt reading from in and writing to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Confirm implements Confirmer.
func (p *Prompt) Confirm(ctx context.Context, prompt string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
		line, err := p.readLine(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
			fmt.Fprintln(p.out)
			return false, ctxErr
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return false, errors.Wrap(err, "read answer")
		}
		eof := err != nil

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			if eof {
				fmt.Fprintln(p.out)
			}
			return false, nil
		}
		if eof {
			fmt.Fprintln(p.out)
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

func (p *Prompt) readLine(ctx context.Context) (string, error) {
	if p.pending == nil {
		ch := make(chan answer, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- answer{line: line, err: err}
		}()
		p.pending = ch
	}
	select {
	case a := <-p.pending:
		p.pending = nil
		return a.line, a.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Interactive reports whether f is a terminal, i.e. whether a person is
// likely to be answering the prompt.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
