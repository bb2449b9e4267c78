// Package matchgame implements the two-column tap-to-pair game used by the
// match and fill-in-the-blank steps.
package matchgame

import (
	"math/rand"
	"time"

	"github.com/pterm/pterm"

	"lingoland/internal/logging"
	"lingoland/internal/loop"
)

// DefaultWrongFlash is how long a rejected pair stays flagged.
const DefaultWrongFlash = 900 * time.Millisecond

// Card is one side of a pair.
type Card struct {
	Text     string // what the card shows
	Speech   string // what the card says when tapped
	Locale   string
	Phonetic string
}

// Pair is a correct left/right pairing.
type Pair struct {
	Left  Card
	Right Card
}

// Side selects a column.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// CardState is how a card should be drawn.
type CardState int

const (
	Idle CardState = iota
	Selected
	Wrong
	Matched
)

func (s CardState) String() string {
	switch s {
	case Selected:
		return "selected"
	case Wrong:
		return "wrong"
	case Matched:
		return "matched"
	}
	return "idle"
}

// Outcome is the result of a tap.
type Outcome int

const (
	Ignored Outcome = iota
	Selection
	Match
	Mismatch
)

func (o Outcome) String() string {
	switch o {
	case Selection:
		return "selected"
	case Match:
		return "matched"
	case Mismatch:
		return "wrong"
	}
	return "ignored"
}

// Options wires an engine to its surroundings. Every field is optional.
type Options struct {
	Scheduler  loop.Scheduler
	Rand       *rand.Rand
	WrongFlash time.Duration
	Logger     *pterm.Logger

	// Cue plays a card's audio. It is called on left selection and on Hear.
	Cue func(Card)
	// OnProgress receives the matched count after every commit.
	OnProgress func(matched, total int)
	// OnResult receives every Match and Mismatch decided by TapRight.
	OnResult func(Outcome)
	// OnChange is called after any visible state change, including the
	// wrong flash clearing.
	OnChange func()
}

type flash struct {
	left, right int // pair indexes
}

// Engine holds one game's state. Card positions in the columns are fixed
// at construction. All methods must be called from the loop goroutine.
type Engine struct {
	pairs []Pair
	left  []int // display position -> pair index
	right []int

	matched  map[int]bool // pair index -> matched; a pair index names both cards
	selected int          // pair index of the selected left card, or -1
	wrong    *flash
	timer    loop.Timer
	closed   bool

	opts Options
	log  *pterm.Logger
}

// New shuffles both columns independently and returns a fresh engine.
func New(pairs []Pair, opts Options) *Engine {
	if opts.WrongFlash <= 0 {
		opts.WrongFlash = DefaultWrongFlash
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &Engine{
		pairs:    pairs,
		left:     permutation(opts.Rand, len(pairs)),
		right:    permutation(opts.Rand, len(pairs)),
		matched:  make(map[int]bool, len(pairs)),
		selected: -1,
		opts:     opts,
		log:      logging.OrDiscard(opts.Logger),
	}
	return e
}

// permutation returns a Fisher-Yates shuffle of 0..n-1.
func permutation(r *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx
}

// Total returns the number of pairs.
func (e *Engine) Total() int {
	return len(e.pairs)
}

// Matched returns the number of committed pairs.
func (e *Engine) Matched() int {
	return len(e.matched)
}

// Done reports whether every pair is matched.
func (e *Engine) Done() bool {
	return len(e.matched) == len(e.pairs)
}

// Card returns the card shown at a column position.
func (e *Engine) Card(side Side, pos int) (Card, bool) {
	idx, ok := e.pairAt(side, pos)
	if !ok {
		return Card{}, false
	}
	if side == Left {
		return e.pairs[idx].Left, true
	}
	return e.pairs[idx].Right, true
}

// Column returns the cards of one side in display order.
func (e *Engine) Column(side Side) []Card {
	order := e.left
	if side == Right {
		order = e.right
	}
	cards := make([]Card, len(order))
	for pos := range order {
		cards[pos], _ = e.Card(side, pos)
	}
	return cards
}

// State returns how the card at a column position should be drawn.
func (e *Engine) State(side Side, pos int) CardState {
	idx, ok := e.pairAt(side, pos)
	if !ok {
		return Idle
	}
	switch {
	case e.matched[idx]:
		return Matched
	case e.wrong != nil && side == Left && e.wrong.left == idx:
		return Wrong
	case e.wrong != nil && side == Right && e.wrong.right == idx:
		return Wrong
	case side == Left && e.selected == idx:
		return Selected
	}
	return Idle
}

func (e *Engine) pairAt(side Side, pos int) (int, bool) {
	order := e.left
	if side == Right {
		order = e.right
	}
	if pos < 0 || pos >= len(order) {
		return 0, false
	}
	return order[pos], true
}

// TapLeft selects the unmatched left card at pos, replacing any previous
// selection, and plays its cue.
func (e *Engine) TapLeft(pos int) Outcome {
	idx, ok := e.pairAt(Left, pos)
	if !ok || e.closed || e.matched[idx] {
		return Ignored
	}

	e.selected = idx
	e.log.Debug("match select", e.log.Args("pair", idx))
	e.cue(e.pairs[idx].Left)
	e.changed()
	return Selection
}

// TapRight tries to pair the selected left card with the right card at pos.
// A wrong pair flashes both cards and clears the selection.
func (e *Engine) TapRight(pos int) Outcome {
	idx, ok := e.pairAt(Right, pos)
	if !ok || e.closed || e.matched[idx] || e.selected < 0 {
		return Ignored
	}

	left := e.selected
	e.selected = -1
	e.clearFlash()

	if left == idx {
		e.matched[idx] = true
		e.log.Debug("match commit", e.log.Args("pair", idx, "matched", len(e.matched), "total", len(e.pairs)))
		e.result(Match)
		if e.opts.OnProgress != nil {
			e.opts.OnProgress(len(e.matched), len(e.pairs))
		}
		e.changed()
		return Match
	}

	f := &flash{left: left, right: idx}
	e.wrong = f
	e.log.Debug("match wrong", e.log.Args("left", left, "right", idx))
	if e.opts.Scheduler != nil {
		e.timer = e.opts.Scheduler.AfterFunc(e.opts.WrongFlash, func() {
			// A newer tap may have replaced the flash already.
			if e.wrong != f {
				return
			}
			e.wrong = nil
			e.timer = nil
			e.changed()
		})
	}
	e.result(Mismatch)
	e.changed()
	return Mismatch
}

// Hear plays the cue of any card, matched or not, without touching the
// match state.
func (e *Engine) Hear(side Side, pos int) bool {
	card, ok := e.Card(side, pos)
	if !ok || e.closed {
		return false
	}
	e.cue(card)
	return true
}

// Close cancels the pending flash timer. The engine ignores taps afterwards.
func (e *Engine) Close() {
	e.clearFlash()
	e.closed = true
}

func (e *Engine) clearFlash() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.wrong = nil
}

func (e *Engine) cue(c Card) {
	if e.opts.Cue != nil && c.Speech != "" {
		e.opts.Cue(c)
	}
}

func (e *Engine) result(out Outcome) {
	if e.opts.OnResult != nil {
		e.opts.OnResult(out)
	}
}

func (e *Engine) changed() {
	if e.opts.OnChange != nil {
		e.opts.OnChange()
	}
}
