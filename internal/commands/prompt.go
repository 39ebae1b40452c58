package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// confirm asks a yes/no question. --yes answers it up front; EOF is a no.
func (a *app) confirm(question string) (bool, error) {
	return confirm(a.in, a.out, a.yes, question)
}

func confirm(in io.Reader, out io.Writer, yes bool, question string) (bool, error) {
	if yes {
		return true, nil
	}
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// progress returns a batch progress callback that redraws one line on
// stderr.
func (a *app) progress(label string) func(done, total int) {
	return progressPrinter(a.errOut, label)
}

func progressPrinter(w io.Writer, label string) func(done, total int) {
	return func(done, total int) {
		fmt.Fprintf(w, "\r%s: %d/%d", label, done, total)
		if done == total {
			fmt.Fprintln(w)
		}
	}
}

func (a *app) cancelled() error {
	fmt.Fprintln(a.out, "Cancelled.")
	return nil
}
