// Package tilebuilder implements the sentence builder: the learner taps
// tiles from a shuffled bank until the built sequence equals the target.
package tilebuilder

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"lingoland/internal/logging"
	"lingoland/internal/schema"
)

// Minimum bank sizes before filler stops being added.
const (
	MinBankSingle = 8
	MinBankMulti  = 10
)

// ErrUnknownName is returned by SetName for a name outside the step's list.
var ErrUnknownName = errors.New("name is not one of the step's names")

// Options wires an engine to its surroundings. Every field is optional.
type Options struct {
	Filler []string // padding tokens in preference order
	Rand   *rand.Rand
	Logger *pterm.Logger

	// OnProgress receives the done count whenever it changes or the build
	// state is rebuilt.
	OnProgress func(done, total int)
	OnChange   func()
}

// Sentence is one target sentence with the name slot filled.
type Sentence struct {
	Key    string
	Text   string
	Locale string
	Target []string
	Bank   []string
}

type buildState struct {
	built []string
	done  bool
}

// Engine holds per-sentence build state. All methods must be called from
// the loop goroutine.
type Engine struct {
	templates []schema.BuildSentence
	names     []string
	name      string

	sentences []*Sentence
	byKey     map[string]int
	state     map[string]*buildState
	closed    bool

	opts Options
	log  *pterm.Logger
}

// New builds banks for every template with name substituted.
func New(templates []schema.BuildSentence, names []string, name string, opts Options) *Engine {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e := &Engine{
		templates: templates,
		names:     names,
		name:      name,
		opts:      opts,
		log:       logging.OrDiscard(opts.Logger),
	}
	e.rebuild()
	return e
}

func (e *Engine) rebuild() {
	e.sentences = make([]*Sentence, len(e.templates))
	e.byKey = make(map[string]int, len(e.templates))
	e.state = make(map[string]*buildState, len(e.templates))

	for i, tmpl := range e.templates {
		s := tmpl.WithName(e.name)
		e.sentences[i] = &Sentence{
			Key:    s.Key,
			Text:   s.Text,
			Locale: s.Locale,
			Target: s.Tiles,
			Bank:   BuildBank(s.Tiles, s.Distractors, e.opts.Filler, e.opts.Rand),
		}
		e.byKey[s.Key] = i
		e.state[s.Key] = &buildState{}
	}
}

// BuildBank returns the shuffled bank for a sentence: the correct tiles
// with their multiplicity, distractors not already present, then filler
// not already present until the minimum size is reached.
func BuildBank(correct, distractors, filler []string, r *rand.Rand) []string {
	bank := make([]string, 0, MinBankMulti)
	present := make(map[string]bool)

	bank = append(bank, correct...)
	for _, t := range correct {
		present[t] = true
	}
	for _, t := range distractors {
		if !present[t] {
			present[t] = true
			bank = append(bank, t)
		}
	}

	minSize := MinBankMulti
	if len(correct) == 1 {
		minSize = MinBankSingle
	}
	for _, t := range filler {
		if len(bank) >= minSize {
			break
		}
		if !present[t] {
			present[t] = true
			bank = append(bank, t)
		}
	}

	for i := len(bank) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		bank[i], bank[j] = bank[j], bank[i]
	}
	return bank
}

// Name returns the name currently substituted into the sentences.
func (e *Engine) Name() string {
	return e.name
}

// SetName substitutes a new name and discards all build progress.
func (e *Engine) SetName(name string) error {
	if e.closed {
		return nil
	}
	found := false
	for _, n := range e.names {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownName
	}

	e.name = name
	e.rebuild()
	e.log.Debug("build name changed", e.log.Args("name", name))
	e.progress()
	e.changed()
	return nil
}

// Sentences returns the sentences in authored order.
func (e *Engine) Sentences() []*Sentence {
	return e.sentences
}

// Sentence returns a sentence by key.
func (e *Engine) Sentence(key string) (*Sentence, bool) {
	i, ok := e.byKey[key]
	if !ok {
		return nil, false
	}
	return e.sentences[i], true
}

// Built returns the tiles placed so far for key.
func (e *Engine) Built(key string) []string {
	if st := e.state[key]; st != nil {
		return append([]string(nil), st.built...)
	}
	return nil
}

// Done reports whether key has been built exactly.
func (e *Engine) Done(key string) bool {
	st := e.state[key]
	return st != nil && st.done
}

// DoneCount returns the number of finished sentences.
func (e *Engine) DoneCount() int {
	n := 0
	for _, st := range e.state {
		if st.done {
			n++
		}
	}
	return n
}

// Total returns the number of sentences.
func (e *Engine) Total() int {
	return len(e.sentences)
}

// Complete reports whether every sentence is done.
func (e *Engine) Complete() bool {
	return e.DoneCount() == e.Total()
}

// Available reports whether the bank tile at pos can still be placed.
func (e *Engine) Available(key string, pos int) bool {
	s, ok := e.Sentence(key)
	if !ok || pos < 0 || pos >= len(s.Bank) {
		return false
	}
	st := e.state[key]
	if st.done || len(st.built) >= len(s.Target) {
		return false
	}
	tile := s.Bank[pos]
	return count(st.built, tile) < count(s.Bank, tile)
}

// Tap appends the bank tile at pos to key's build. It reports whether the
// tile was placed.
func (e *Engine) Tap(key string, pos int) bool {
	if e.closed || !e.Available(key, pos) {
		return false
	}
	s, _ := e.Sentence(key)
	st := e.state[key]

	st.built = append(st.built, s.Bank[pos])
	st.done = strings.Join(st.built, " ") == strings.Join(s.Target, " ")
	e.log.Debug("build tap", e.log.Args("key", key, "tile", s.Bank[pos], "done", st.done))

	if st.done {
		e.progress()
	}
	e.changed()
	return true
}

// TapTile places the first available bank tile equal to tile.
func (e *Engine) TapTile(key, tile string) bool {
	s, ok := e.Sentence(key)
	if !ok {
		return false
	}
	for pos, t := range s.Bank {
		if t == tile && e.Available(key, pos) {
			return e.Tap(key, pos)
		}
	}
	return false
}

// Reset clears key's build. Finished sentences stay locked.
func (e *Engine) Reset(key string) bool {
	st := e.state[key]
	if e.closed || st == nil || st.done {
		return false
	}
	st.built = nil
	e.log.Debug("build reset", e.log.Args("key", key))
	e.changed()
	return true
}

// Close makes the engine ignore further input.
func (e *Engine) Close() {
	e.closed = true
}

func (e *Engine) progress() {
	if e.opts.OnProgress != nil {
		e.opts.OnProgress(e.DoneCount(), e.Total())
	}
}

func (e *Engine) changed() {
	if e.opts.OnChange != nil {
		e.opts.OnChange()
	}
}

func count(tiles []string, tile string) int {
	n := 0
	for _, t := range tiles {
		if t == tile {
			n++
		}
	}
	return n
}
