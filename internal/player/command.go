// Package player connects a lesson controller to a line-oriented terminal:
// it parses commands, feeds typed transcripts to the speech engine and
// plays speech through an external synthesizer.
package player

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Command is one parsed input line.
type Command struct {
	Name string
	Args []string
}

var (
	ErrEmpty          = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotHere        = errors.New("command does not apply to this step")
)

// arity is the number of arguments each command takes.
var arity = map[string]int{
	"next":       0,
	"prev":       0,
	"complete":   0,
	"review":     0,
	"play":       1,
	"left":       1,
	"right":      1,
	"hear-left":  1,
	"hear-right": 1,
	"tap":        2,
	"reset":      1,
	"say":        1,
	"stop":       0,
	"name":       1,
	"lang":       1,
	"help":       0,
	"quit":       0,
}

var aliases = map[string]string{
	"n":    "next",
	"p":    "prev",
	"exit": "quit",
	"q":    "quit",
	"?":    "help",
}

// Parse splits a line into a command and checks its argument count.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmpty
	}
	name := strings.ToLower(fields[0])
	if full, ok := aliases[name]; ok {
		name = full
	}
	n, ok := arity[name]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
	args := fields[1:]
	if len(args) != n {
		return Command{}, fmt.Errorf("%s takes %d argument(s), got %d", name, n, len(args))
	}
	return Command{Name: name, Args: args}, nil
}

// Index returns argument i as a zero-based position. Positions are typed
// one-based.
func (c Command) Index(i int) (int, error) {
	n, err := strconv.Atoi(c.Args[i])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s: %q is not a position", c.Name, c.Args[i])
	}
	return n - 1, nil
}

// Help is the command reference shown by "help".
const Help = `next, prev            move between steps
complete, review      finish the lesson, or go back to it
play N                hear item, line or task N
left N, right N       tap a card in a matching game
hear-left N/right N   hear a card without tapping it
tap S N, reset S      place tile N in sentence S, or clear sentence S
say N, stop           speak item or line N; type what you said
name X, lang X        change your name or the lesson language
quit                  leave the lesson

While listening, type what you said. An empty line or stop ends without an answer.
!deny, !silence and !fail simulate microphone errors.`
