package lesson

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"lingoland/internal/hint"
	"lingoland/internal/loop"
	"lingoland/internal/matchgame"
	"lingoland/internal/metrics"
	"lingoland/internal/schema"
	"lingoland/internal/speech"
	"lingoland/internal/tilebuilder"
)

// Activity is the engine set mounted for one step. The concrete types are
// *ListenActivity, *MatchActivity, *PronounceActivity, *BuildActivity,
// *ConversationActivity, *FillBlankActivity and *AssessmentActivity.
type Activity interface {
	Kind() schema.StepKind
	close()
}

// env is what an activity gets from the controller for its lifetime.
type env struct {
	lesson *schema.Lesson
	lang   schema.Language
	name   string
	names  []string

	speaker     speech.Speaker
	recognizer  speech.Recognizer
	sched       loop.Scheduler
	rand        *rand.Rand
	wrongFlash  time.Duration
	wrongRevert time.Duration
	log         *pterm.Logger
	metrics     *metrics.Collector

	report  func(done, total int)
	changed func()
}

// speak cancels playback in flight and plays text. A missing speaker is
// logged and otherwise ignored.
func (v *env) speak(text, locale string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	v.metrics.IncrementCounter(metrics.Plays, 1)
	if v.speaker == nil {
		v.log.Warn("no speaker, playback skipped", v.log.Args("text", text))
		return
	}
	v.speaker.Cancel()
	if err := v.speaker.Speak(text, locale); err != nil {
		v.log.Warn("playback failed", v.log.Args("error", err.Error(), "locale", locale))
	}
}

func (v *env) gloss(text string) string {
	return v.lesson.Gloss(v.lang.Code, text, v.name)
}

func mount(step schema.Step, v *env) Activity {
	switch s := step.(type) {
	case *schema.ListenStep:
		return newListen(s, v)
	case *schema.MatchStep:
		return newMatch(s, v)
	case *schema.PronounceStep:
		return newPronounce(s, v)
	case *schema.BuildStep:
		return newBuild(s, v)
	case *schema.ConversationStep:
		return newConversation(s, v)
	case *schema.FillBlankStep:
		return newFillBlank(s, v)
	case *schema.AssessmentStep:
		return newAssessment(s, v)
	}
	panic("lesson: unhandled step type " + step.Kind().String())
}

// ListenActivity: play every item at least once.
type ListenActivity struct {
	Items []schema.VocabItem

	heard map[int]bool
	env   *env
}

func newListen(s *schema.ListenStep, v *env) *ListenActivity {
	a := &ListenActivity{Items: s.ItemsFor(v.lang.Code), heard: make(map[int]bool), env: v}
	v.report(0, len(a.Items))
	return a
}

func (a *ListenActivity) Kind() schema.StepKind { return schema.KindListen }

// Play speaks item i and marks it heard.
func (a *ListenActivity) Play(i int) bool {
	if i < 0 || i >= len(a.Items) {
		return false
	}
	it := a.Items[i]
	a.env.speak(it.Speech(), it.LocaleOr(a.env.lang.Locale))
	a.heard[i] = true
	a.env.report(len(a.heard), len(a.Items))
	a.env.changed()
	return true
}

// Heard reports whether item i has been played.
func (a *ListenActivity) Heard(i int) bool { return a.heard[i] }

func (a *ListenActivity) close() {}

// pairGame adapts a matchgame engine and records its metrics.
type pairGame struct {
	Game *matchgame.Engine
}

func newPairGame(pairs []matchgame.Pair, v *env) pairGame {
	var g pairGame
	g.Game = matchgame.New(pairs, matchgame.Options{
		Scheduler:  v.sched,
		Rand:       v.rand,
		WrongFlash: v.wrongFlash,
		Logger:     v.log,
		Cue:        func(c matchgame.Card) { v.speak(c.Speech, c.Locale) },
		OnProgress: v.report,
		OnResult: func(out matchgame.Outcome) {
			switch out {
			case matchgame.Match:
				v.metrics.IncrementCounter(metrics.Pairs, 1)
			case matchgame.Mismatch:
				v.metrics.IncrementCounter(metrics.WrongPairs, 1)
			}
		},
		OnChange: v.changed,
	})
	v.report(0, len(pairs))
	return g
}

// TapLeft selects the left card at pos.
func (g pairGame) TapLeft(pos int) matchgame.Outcome {
	return g.Game.TapLeft(pos)
}

// TapRight tries the right card at pos against the selection.
func (g pairGame) TapRight(pos int) matchgame.Outcome {
	return g.Game.TapRight(pos)
}

// Hear plays any card's audio.
func (g pairGame) Hear(side matchgame.Side, pos int) bool {
	return g.Game.Hear(side, pos)
}

func (g pairGame) close() { g.Game.Close() }

// MatchActivity: pair each audio cue with its written form.
type MatchActivity struct {
	pairGame
}

func newMatch(s *schema.MatchStep, v *env) *MatchActivity {
	items := s.ItemsFor(v.lang.Code)
	pairs := make([]matchgame.Pair, len(items))
	for i, it := range items {
		locale := it.LocaleOr(v.lang.Locale)
		pairs[i] = matchgame.Pair{
			Left:  matchgame.Card{Speech: it.Speech(), Locale: locale},
			Right: matchgame.Card{Text: it.Text, Speech: it.Speech(), Locale: locale, Phonetic: it.Phonetic},
		}
	}
	return &MatchActivity{newPairGame(pairs, v)}
}

func (a *MatchActivity) Kind() schema.StepKind { return schema.KindMatch }

// FillBlankActivity: pair each word with the sentence it completes.
type FillBlankActivity struct {
	pairGame
}

func newFillBlank(s *schema.FillBlankStep, v *env) *FillBlankActivity {
	src := s.PairsFor(v.lang.Code)
	pairs := make([]matchgame.Pair, len(src))
	for i, p := range src {
		p.Sentence = schema.SubstituteName(p.Sentence, v.name)
		pairs[i] = matchgame.Pair{
			Left: matchgame.Card{Text: p.Word, Speech: p.Word, Locale: v.lang.Locale, Phonetic: v.gloss(p.Word)},
			Right: matchgame.Card{
				Text:     p.Sentence,
				Speech:   p.Filled(),
				Locale:   v.lang.Locale,
				Phonetic: v.gloss(p.Filled()),
			},
		}
	}
	return &FillBlankActivity{newPairGame(pairs, v)}
}

func (a *FillBlankActivity) Kind() schema.StepKind { return schema.KindFillBlank }

// sayGame adapts a speech engine and remembers which items were missed so
// their hints can be shown.
type sayGame struct {
	Speech *speech.Engine
	missed map[string]bool
	env    *env
}

func newSayGame(items []speech.Item, v *env) *sayGame {
	g := &sayGame{missed: make(map[string]bool), env: v}
	g.Speech = speech.New(items, speech.Options{
		Speaker:     v.speaker,
		Recognizer:  v.recognizer,
		Scheduler:   v.sched,
		Script:      v.lang.Script,
		WrongRevert: v.wrongRevert,
		Logger:      v.log,
		OnCorrect: func(string) {
			v.report(g.Speech.CorrectCount(), g.Speech.Total())
		},
		OnAttempt: g.attempted,
		OnChange:  v.changed,
	})
	v.report(0, len(items))
	return g
}

func (g *sayGame) attempted(a speech.Attempt) {
	m := g.env.metrics
	switch {
	case a.Err != nil:
		m.IncrementCounter(metrics.CaptureErrors, 1)
	case a.Verdict.Accepted:
		m.IncrementCounter(metrics.Attempts, 1)
		m.IncrementCounter(metrics.Accepted, 1)
	default:
		m.IncrementCounter(metrics.Attempts, 1)
		m.IncrementCounter(metrics.Rejected, 1)
		g.missed[a.Key] = true
	}
}

// Stop ends the capture in progress.
func (g *sayGame) Stop() bool { return g.Speech.Stop() }

// Notice returns the persistent capability notice, or "".
func (g *sayGame) Notice() string { return g.Speech.Notice() }

// LastError returns the latest capture error, or nil.
func (g *sayGame) LastError() *speech.CaptureError { return g.Speech.LastError() }

func (g *sayGame) close() { g.Speech.Close() }

// PronounceActivity: say every item until it is accepted.
type PronounceActivity struct {
	*sayGame
	Items []schema.VocabItem
}

func newPronounce(s *schema.PronounceStep, v *env) *PronounceActivity {
	items := s.ItemsFor(v.lang.Code)
	speechItems := make([]speech.Item, len(items))
	for i, it := range items {
		speechItems[i] = speech.Item{Key: it.ID, Expected: it.Speech(), Locale: it.LocaleOr(v.lang.Locale)}
	}
	return &PronounceActivity{sayGame: newSayGame(speechItems, v), Items: items}
}

func (a *PronounceActivity) Kind() schema.StepKind { return schema.KindPronounce }

func (a *PronounceActivity) key(i int) string {
	if i < 0 || i >= len(a.Items) {
		return ""
	}
	return a.Items[i].ID
}

// Start listens for item i.
func (a *PronounceActivity) Start(i int) error { return a.Speech.Start(a.key(i)) }

// Play speaks item i. Capture in progress is stopped first.
func (a *PronounceActivity) Play(i int) error {
	err := a.Speech.Play(a.key(i))
	if err == nil {
		a.env.metrics.IncrementCounter(metrics.Plays, 1)
	}
	return err
}

// State returns item i's attempt state.
func (a *PronounceActivity) State(i int) speech.AttemptState { return a.Speech.State(a.key(i)) }

// LastHeard returns the last transcript for item i.
func (a *PronounceActivity) LastHeard(i int) string { return a.Speech.LastHeard(a.key(i)) }

// Hint returns item i's pronunciation aid once it has been missed.
func (a *PronounceActivity) Hint(i int) (hint.Aid, bool) {
	key := a.key(i)
	if key == "" || !a.missed[key] || a.Speech.State(key) == speech.Correct {
		return hint.Aid{}, false
	}
	return hint.ForItem(a.Items[i], a.env.lang), true
}

// BuildActivity: rebuild each sentence from its tiles.
type BuildActivity struct {
	Builder *tilebuilder.Engine
	env     *env
}

func newBuild(s *schema.BuildStep, v *env) *BuildActivity {
	a := &BuildActivity{env: v}
	templates := make([]schema.BuildSentence, 0, len(s.SentencesFor(v.lang.Code)))
	for _, t := range s.SentencesFor(v.lang.Code) {
		if t.Locale == "" {
			t.Locale = v.lang.Locale
		}
		templates = append(templates, t)
	}
	a.Builder = tilebuilder.New(templates, v.names, v.name, tilebuilder.Options{
		Filler:     v.lang.Filler,
		Rand:       v.rand,
		Logger:     v.log,
		OnProgress: v.report,
		OnChange:   v.changed,
	})
	v.report(0, a.Builder.Total())
	return a
}

func (a *BuildActivity) Kind() schema.StepKind { return schema.KindBuild }

// Tap places bank tile pos into sentence key.
func (a *BuildActivity) Tap(key string, pos int) bool {
	ok := a.Builder.Tap(key, pos)
	if ok {
		a.env.metrics.IncrementCounter(metrics.Tiles, 1)
	}
	return ok
}

// TapTile places the first available bank tile equal to tile.
func (a *BuildActivity) TapTile(key, tile string) bool {
	ok := a.Builder.TapTile(key, tile)
	if ok {
		a.env.metrics.IncrementCounter(metrics.Tiles, 1)
	}
	return ok
}

// Reset clears sentence key.
func (a *BuildActivity) Reset(key string) bool {
	ok := a.Builder.Reset(key)
	if ok {
		a.env.metrics.IncrementCounter(metrics.Resets, 1)
	}
	return ok
}

// Play speaks sentence key.
func (a *BuildActivity) Play(key string) bool {
	s, ok := a.Builder.Sentence(key)
	if !ok {
		return false
	}
	a.env.speak(s.Text, s.Locale)
	return true
}

// Gloss returns the phonetic reading of a tile, or "".
func (a *BuildActivity) Gloss(tile string) string { return a.env.gloss(tile) }

func (a *BuildActivity) setName(name string) error {
	a.env.name = name
	if len(a.env.names) == 0 {
		// without names no sentence has a name slot
		a.env.changed()
		return nil
	}
	return a.Builder.SetName(name)
}

func (a *BuildActivity) close() { a.Builder.Close() }

// ConversationActivity: the app and the learner alternate lines; every
// non-empty learner line must be said.
type ConversationActivity struct {
	*sayGame
	Lines []schema.Line
}

func lineKey(i int) string { return "line-" + strconv.Itoa(i) }

func newConversation(s *schema.ConversationStep, v *env) *ConversationActivity {
	src := s.ScriptFor(v.lang.Code)
	lines := make([]schema.Line, len(src))
	var items []speech.Item
	for i, l := range src {
		l.Text = schema.SubstituteName(l.Text, v.name)
		lines[i] = l
		if l.Required() {
			items = append(items, speech.Item{Key: lineKey(i), Expected: strings.TrimSpace(l.Text), Locale: v.lang.Locale})
		}
	}
	return &ConversationActivity{sayGame: newSayGame(items, v), Lines: lines}
}

func (a *ConversationActivity) Kind() schema.StepKind { return schema.KindConversation }

// Start listens for learner line i.
func (a *ConversationActivity) Start(i int) error {
	if i < 0 || i >= len(a.Lines) || !a.Lines[i].Required() {
		return speech.ErrUnknownItem
	}
	return a.Speech.Start(lineKey(i))
}

// Play speaks line i, whoever its speaker is.
func (a *ConversationActivity) Play(i int) bool {
	if i < 0 || i >= len(a.Lines) {
		return false
	}
	a.Speech.Stop()
	a.env.speak(a.Lines[i].Text, a.env.lang.Locale)
	return true
}

// State returns line i's attempt state; app lines are always Idle.
func (a *ConversationActivity) State(i int) speech.AttemptState {
	return a.Speech.State(lineKey(i))
}

// LastHeard returns the last transcript for line i.
func (a *ConversationActivity) LastHeard(i int) string {
	return a.Speech.LastHeard(lineKey(i))
}

// Gloss returns the phonetic reading of line i, or "".
func (a *ConversationActivity) Gloss(i int) string {
	if i < 0 || i >= len(a.Lines) {
		return ""
	}
	return a.env.gloss(a.Lines[i].Text)
}

// Hint returns line i's pronunciation aid once it has been missed.
func (a *ConversationActivity) Hint(i int) (hint.Aid, bool) {
	key := lineKey(i)
	if i < 0 || i >= len(a.Lines) || !a.missed[key] || a.Speech.State(key) == speech.Correct {
		return hint.Aid{}, false
	}
	if g := a.Gloss(i); g != "" {
		return hint.Aid{Primary: g}, true
	}
	return hint.ForText(a.Lines[i].Text, a.env.lang), true
}

// SayPrefix marks an assessment task as something to say aloud; it is not
// spoken itself.
const SayPrefix = "Say: "

// AssessmentActivity: a read-only task list.
type AssessmentActivity struct {
	Tasks []string
	env   *env
}

func newAssessment(s *schema.AssessmentStep, v *env) *AssessmentActivity {
	a := &AssessmentActivity{Tasks: s.TasksFor(v.lang.Code, v.name), env: v}
	v.report(0, 0)
	return a
}

func (a *AssessmentActivity) Kind() schema.StepKind { return schema.KindAssessment }

// PlayTask speaks task i without its "Say: " prefix.
func (a *AssessmentActivity) PlayTask(i int) bool {
	if i < 0 || i >= len(a.Tasks) {
		return false
	}
	a.env.speak(strings.TrimPrefix(strings.TrimSpace(a.Tasks[i]), SayPrefix), a.env.lang.Locale)
	return true
}

func (a *AssessmentActivity) close() {}
