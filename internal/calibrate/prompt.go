// Package calibrate runs the terminal dialogs used to discover keybindings and pick a window.
package calibrate

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// Prompter asks line-based questions.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Ask prints prompt followed by "> " and returns the trimmed answer.
// It returns io.EOF once input is exhausted.
func (p *Prompter) Ask(prompt string) (string, error) {
	fmt.Fprintf(p.out, "%s> ", prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// Confirm asks prompt and reports whether the answer was non-empty.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	answer, err := p.Ask(prompt)
	return answer != "", err
}

// Option is a candidate answer. Typing Label or any of Keys selects it.
type Option[T any] struct {
	Label string
	Keys  []string
	Value T
}

func (o Option[T]) matches(answer string) bool {
	if strings.EqualFold(o.Label, answer) {
		return true
	}
	for _, k := range o.Keys {
		if strings.EqualFold(k, answer) {
			return true
		}
	}
	return false
}

// Choose offers options and returns the one the operator typed. When the
// answer matches nothing, each option is offered in turn and the first
// non-empty answer picks it. ok is false when nothing was chosen.
func Choose[T any](p *Prompter, options []Option[T]) (choice T, ok bool, err error) {
	answer, err := p.Ask(listing(options))
	if err != nil {
		return choice, false, err
	}
	for _, o := range options {
		if o.matches(answer) {
			log.Printf("Calibrate: chose %s since %q", o.Label, answer)
			return o.Value, true, nil
		}
	}
	for _, o := range options {
		yes, err := p.Confirm(fmt.Sprintf("choose %s ?", o.Label))
		if err != nil {
			return choice, false, err
		}
		if yes {
			log.Printf("Calibrate: option %s chosen", o.Label)
			return o.Value, true, nil
		}
	}
	log.Printf("Calibrate: no option chosen")
	return choice, false, nil
}

// listing shows all labels, or the first and last ten of long lists.
func listing[T any](options []Option[T]) string {
	labels := func(opts []Option[T]) string {
		s := make([]string, len(opts))
		for i, o := range opts {
			s[i] = o.Label
		}
		return "[" + strings.Join(s, " ") + "]"
	}
	if len(options) > 10 {
		return labels(options[:10]) + " ... " + labels(options[len(options)-10:])
	}
	return labels(options)
}

// IntRange offers every integer from lo to hi inclusive.
func IntRange(lo, hi int) []Option[int] {
	if hi < lo {
		return nil
	}
	out := make([]Option[int], 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, Option[int]{Label: strconv.Itoa(v), Value: v})
	}
	return out
}
