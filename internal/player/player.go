package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"lingoland/internal/lesson"
	"lingoland/internal/logging"
	"lingoland/internal/loop"
	"lingoland/internal/matchgame"
	"lingoland/internal/metrics"
	"lingoland/internal/schema"
	"lingoland/internal/speech"
	"lingoland/internal/ui"
)

// Options configures a Player.
type Options struct {
	Language    string
	Name        string
	Speaker     speech.Speaker // nil plays nothing
	Capture     bool           // false leaves speech capture unavailable
	Scheduler   loop.Scheduler
	Logger      *pterm.Logger
	Metrics     *metrics.Collector
	Rand        *rand.Rand
	WrongFlash  time.Duration
	WrongRevert time.Duration
	UI          *ui.UI // nil renders nothing
}

// Player runs one lesson from typed input. Every method must be called on
// the scheduler's goroutine.
type Player struct {
	c     *lesson.Controller
	rec   *TypedRecognizer
	ui    *ui.UI
	sched loop.Scheduler
	log   *pterm.Logger
	dirty bool
}

// New mounts the first step of l.
func New(l *schema.Lesson, opts Options) (*Player, error) {
	p := &Player{
		rec:   NewTypedRecognizer(),
		ui:    opts.UI,
		sched: opts.Scheduler,
		log:   logging.OrDiscard(opts.Logger),
	}

	lopts := lesson.Options{
		Speaker:     opts.Speaker,
		Scheduler:   opts.Scheduler,
		Logger:      opts.Logger,
		Metrics:     opts.Metrics,
		Rand:        opts.Rand,
		WrongFlash:  opts.WrongFlash,
		WrongRevert: opts.WrongRevert,
		Name:        opts.Name,
		OnChange:    p.changed,
	}
	if opts.Capture {
		lopts.Recognizer = p.rec
	}

	c, err := lesson.New(l, opts.Language, lopts)
	if err != nil {
		return nil, err
	}
	p.c = c
	return p, nil
}

// Controller returns the lesson controller.
func (p *Player) Controller() *lesson.Controller { return p.c }

// Listening reports whether the next input line is a transcript.
func (p *Player) Listening() bool { return p.rec.Listening() }

// changed coalesces redraws into one per scheduler turn.
func (p *Player) changed() {
	if p.dirty || p.sched == nil {
		return
	}
	p.dirty = true
	p.sched.Post(p.render)
}

func (p *Player) render() {
	p.dirty = false
	if p.ui == nil {
		return
	}
	p.ui.Show(p.c)
	p.ui.Prompt(p.Listening())
}

// Input handles one line: a transcript while listening, a command
// otherwise. "stop" is always a command so a capture can be abandoned. It
// reports whether the learner asked to quit.
func (p *Player) Input(line string) (bool, error) {
	cmd, err := Parse(line)
	if p.Listening() && !(err == nil && cmd.Name == "stop") {
		p.rec.Feed(line)
		return false, nil
	}
	if errors.Is(err, ErrEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.Execute(cmd)
}

type pairer interface {
	TapLeft(pos int) matchgame.Outcome
	TapRight(pos int) matchgame.Outcome
	Hear(side matchgame.Side, pos int) bool
}

type sayer interface {
	Start(i int) error
	Stop() bool
}

// Execute runs one parsed command against the mounted step.
func (p *Player) Execute(cmd Command) (bool, error) {
	p.log.Debug("command", p.log.Args("name", cmd.Name, "args", strings.Join(cmd.Args, " ")))

	switch cmd.Name {
	case "quit":
		return true, nil
	case "help":
		if p.ui != nil {
			p.ui.Info(Help)
		}
		return false, nil
	case "next":
		return false, p.c.Next()
	case "prev":
		return false, p.c.Prev()
	case "complete":
		return false, p.c.Complete()
	case "review":
		return false, p.c.Review()
	case "name":
		return false, p.c.SetName(cmd.Args[0])
	case "lang":
		return false, p.c.SetLanguage(cmd.Args[0])
	}

	if p.c.Completed() {
		return false, lesson.ErrCompleted
	}
	var (
		a   = p.c.Activity()
		pos int
		err error
	)
	if len(cmd.Args) > 0 {
		if pos, err = cmd.Index(len(cmd.Args) - 1); err != nil {
			return false, err
		}
	}

	switch cmd.Name {
	case "play":
		return false, p.play(a, pos)
	case "left", "right", "hear-left", "hear-right":
		g, ok := a.(pairer)
		if !ok {
			return false, ErrNotHere
		}
		return false, tapCard(g, cmd.Name, pos)
	case "say":
		s, ok := a.(sayer)
		if !ok {
			return false, ErrNotHere
		}
		return false, s.Start(pos)
	case "stop":
		s, ok := a.(sayer)
		if !ok {
			return false, ErrNotHere
		}
		s.Stop()
		return false, nil
	case "tap", "reset":
		b, ok := a.(*lesson.BuildActivity)
		if !ok {
			return false, ErrNotHere
		}
		return false, p.build(b, cmd, pos)
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name)
}

func errPosition(pos int) error {
	return fmt.Errorf("nothing at position %d", pos+1)
}

func (p *Player) play(a lesson.Activity, pos int) error {
	var ok bool
	switch a := a.(type) {
	case *lesson.ListenActivity:
		ok = a.Play(pos)
	case *lesson.PronounceActivity:
		return a.Play(pos)
	case *lesson.ConversationActivity:
		ok = a.Play(pos)
	case *lesson.AssessmentActivity:
		ok = a.PlayTask(pos)
	case *lesson.BuildActivity:
		key, found := sentenceKey(a, pos)
		ok = found && a.Play(key)
	default:
		return ErrNotHere
	}
	if !ok {
		return errPosition(pos)
	}
	return nil
}

func tapCard(g pairer, name string, pos int) error {
	switch name {
	case "hear-left":
		if !g.Hear(matchgame.Left, pos) {
			return errPosition(pos)
		}
		return nil
	case "hear-right":
		if !g.Hear(matchgame.Right, pos) {
			return errPosition(pos)
		}
		return nil
	}

	var out matchgame.Outcome
	if name == "left" {
		out = g.TapLeft(pos)
	} else {
		out = g.TapRight(pos)
	}
	if out == matchgame.Ignored {
		return fmt.Errorf("card %d can't be tapped now", pos+1)
	}
	return nil
}

func sentenceKey(b *lesson.BuildActivity, i int) (string, bool) {
	sentences := b.Builder.Sentences()
	if i < 0 || i >= len(sentences) {
		return "", false
	}
	return sentences[i].Key, true
}

func (p *Player) build(b *lesson.BuildActivity, cmd Command, pos int) error {
	si, err := cmd.Index(0)
	if err != nil {
		return err
	}
	key, ok := sentenceKey(b, si)
	if !ok {
		return fmt.Errorf("no sentence %d", si+1)
	}
	if cmd.Name == "reset" {
		b.Reset(key)
		return nil
	}
	if !b.Tap(key, pos) {
		return fmt.Errorf("tile %d can't be placed in sentence %d", pos+1, si+1)
	}
	return nil
}

// Run drives the player from in until the learner quits, in ends or ctx is
// cancelled. l must not be running yet; Run owns it.
func (p *Player) Run(ctx context.Context, l *loop.Loop, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go l.Run(ctx)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := l.Do(ctx, p.render); err != nil {
		return err
	}

	for {
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text, ok := <-lines:
			if !ok {
				text = "quit"
			}
			line = text
		}

		var quit bool
		err := l.Do(ctx, func() {
			q, err := p.Input(line)
			quit = q
			if err != nil {
				p.log.Debug("command refused", p.log.Args("line", line, "error", err.Error()))
				if p.ui != nil {
					p.ui.Warning(err.Error())
				}
				p.changed()
			}
		})
		if err != nil {
			return err
		}
		if quit {
			return l.Do(ctx, p.c.Exit)
		}
	}
}
