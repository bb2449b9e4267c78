package ui

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"lingoland/internal/lesson"
	"lingoland/internal/matchgame"
	"lingoland/internal/schema"
	"lingoland/internal/speech"
)

// Show prints the current lesson screen.
func (u *UI) Show(c *lesson.Controller) {
	if u.quiet {
		return
	}
	u.Separator()
	fmt.Fprintln(u.out, Screen(c))
}

// Screen renders the controller's state: the completed panel, or the
// current step with its progress and navigation state.
func Screen(c *lesson.Controller) string {
	var b strings.Builder

	if c.Completed() {
		b.WriteString(pterm.DefaultBox.WithTitle("Lesson complete").Sprint(
			fmt.Sprintf("  %s\n  %s\n\n  Type %s to go back or %s to leave.",
				ColorPrimary.Sprint(c.Lesson().Title),
				ColorSecondary.Sprint(c.Language().DisplayName),
				ColorSuccess.Sprint("review"),
				ColorMuted.Sprint("quit"),
			),
		))
		return b.String()
	}

	step := c.Step()
	done, total := c.Progress()
	fmt.Fprintf(&b, "%s %s  %s\n",
		ColorPrimary.Sprintf("[%d/%d]", c.Index()+1, c.Len()),
		step.Title(),
		ColorMuted.Sprintf("(%s, %s)", step.Kind(), c.Language().DisplayName),
	)
	if step.Kind() != schema.KindAssessment {
		fmt.Fprintf(&b, "%s %d/%d\n", Bar(done, total, 12), done, total)
	}
	b.WriteString("\n")
	b.WriteString(Activity(c.Activity()))
	b.WriteString("\n")
	b.WriteString(navigation(c))
	return b.String()
}

// Bar draws a fixed-width progress bar.
func Bar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(width, done*width/total)
	}
	return ColorSuccess.Sprint(strings.Repeat("■", filled)) + ColorMuted.Sprint(strings.Repeat("□", width-filled))
}

func navigation(c *lesson.Controller) string {
	prev := ColorMuted.Sprint("◀ prev")
	if c.CanPrev() {
		prev = ColorSecondary.Sprint("◀ prev")
	}
	var next string
	switch {
	case c.CanComplete():
		next = ColorSuccess.Sprint("complete ✓")
	case c.CanNext():
		next = ColorSecondary.Sprint("next ▶")
	case c.Index() == c.Len()-1:
		next = ColorMuted.Sprint("complete ✓")
	default:
		next = ColorMuted.Sprint("next ▶")
	}
	return prev + "   " + next
}

// Activity renders the body of a mounted activity.
func Activity(a lesson.Activity) string {
	switch a := a.(type) {
	case *lesson.ListenActivity:
		return listen(a)
	case *lesson.MatchActivity:
		return pairs(a.Game, "Tap a sound, then its word.")
	case *lesson.FillBlankActivity:
		return pairs(a.Game, "Tap a word, then the sentence it completes.")
	case *lesson.PronounceActivity:
		return pronounce(a)
	case *lesson.BuildActivity:
		return build(a)
	case *lesson.ConversationActivity:
		return conversation(a)
	case *lesson.AssessmentActivity:
		return assessment(a)
	}
	return ""
}

func listen(a *lesson.ListenActivity) string {
	var b strings.Builder
	b.WriteString(ColorMuted.Sprint("Play each word to hear it.") + "\n")
	for i, it := range a.Items {
		mark := " "
		if a.Heard(i) {
			mark = ColorSuccess.Sprint("✓")
		}
		fmt.Fprintf(&b, " %s %d. %s%s\n", mark, i+1, it.Text, phonetic(it.Phonetic))
	}
	return b.String()
}

func phonetic(p string) string {
	if p == "" {
		return ""
	}
	return "  " + ColorMuted.Sprint(p)
}

func cardLabel(c matchgame.Card) string {
	if c.Text == "" {
		return "🔊"
	}
	return c.Text + phonetic(c.Phonetic)
}

func cardState(s matchgame.CardState, label string) string {
	switch s {
	case matchgame.Selected:
		return ColorPrimary.Sprint("> " + label)
	case matchgame.Wrong:
		return ColorError.Sprint("✗ " + label)
	case matchgame.Matched:
		return ColorSuccess.Sprint("✓ ") + ColorMuted.Sprint(label)
	}
	return "  " + label
}

func pairs(g *matchgame.Engine, prompt string) string {
	left, right := g.Column(matchgame.Left), g.Column(matchgame.Right)
	data := pterm.TableData{{"#", "Left", "#", "Right"}}
	for i := 0; i < max(len(left), len(right)); i++ {
		row := []string{"", "", "", ""}
		if i < len(left) {
			row[0] = fmt.Sprintf("%d", i+1)
			row[1] = cardState(g.State(matchgame.Left, i), cardLabel(left[i]))
		}
		if i < len(right) {
			row[2] = fmt.Sprintf("%d", i+1)
			row[3] = cardState(g.State(matchgame.Right, i), cardLabel(right[i]))
		}
		data = append(data, row)
	}
	table, _ := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	return ColorMuted.Sprint(prompt) + "\n" + table + "\n"
}

func attemptState(s speech.AttemptState) string {
	switch s {
	case speech.Listening:
		return ColorPrimary.Sprint("listening…")
	case speech.Correct:
		return ColorSuccess.Sprint("✓ great!")
	case speech.Wrong:
		return ColorError.Sprint("✗ try again")
	}
	return ""
}

// sayFooter renders the capability notice and the latest capture error.
func sayFooter(notice string, err *speech.CaptureError) string {
	var b strings.Builder
	if notice != "" {
		b.WriteString(ColorWarning.Sprint(notice) + "\n")
	}
	if err != nil {
		b.WriteString(ColorError.Sprint(err.Message()) + "\n")
	}
	return b.String()
}

func pronounce(a *lesson.PronounceActivity) string {
	var b strings.Builder
	b.WriteString(ColorMuted.Sprint("Say each word. Type say N, then what you said.") + "\n")
	for i, it := range a.Items {
		fmt.Fprintf(&b, " %d. %s%s  %s\n", i+1, it.Text, phonetic(it.Phonetic), attemptState(a.State(i)))
		if heard := a.LastHeard(i); heard != "" {
			fmt.Fprintf(&b, "    %s\n", ColorMuted.Sprintf("You said: %s", heard))
		}
		if aid, ok := a.Hint(i); ok {
			writeAid(&b, aid.Primary, aid.Phonetic)
		}
	}
	b.WriteString(sayFooter(a.Notice(), a.LastError()))
	return b.String()
}

func writeAid(b *strings.Builder, primary, phonetic string) {
	fmt.Fprintf(b, "    %s %s\n", ColorWarning.Sprint("Try:"), primary)
	if phonetic != "" {
		fmt.Fprintf(b, "         %s\n", ColorMuted.Sprint(phonetic))
	}
}

func build(a *lesson.BuildActivity) string {
	var b strings.Builder
	b.WriteString(ColorMuted.Sprint("Build each sentence. Type tap S N to place tile N in sentence S.") + "\n")
	for si, s := range a.Builder.Sentences() {
		built := a.Builder.Built(s.Key)
		status := ""
		if a.Builder.Done(s.Key) {
			status = ColorSuccess.Sprint(" ✓")
		}
		fmt.Fprintf(&b, " %d. %s%s\n", si+1, strings.Join(bracket(built), " "), status)
		if a.Builder.Done(s.Key) {
			continue
		}
		tiles := make([]string, len(s.Bank))
		for i, tile := range s.Bank {
			label := fmt.Sprintf("%d:%s", i+1, tile)
			if !a.Builder.Available(s.Key, i) {
				label = ColorMuted.Sprint(label)
			}
			tiles[i] = label
		}
		fmt.Fprintf(&b, "    %s\n", strings.Join(tiles, "  "))
	}
	return b.String()
}

func bracket(tiles []string) []string {
	if len(tiles) == 0 {
		return []string{ColorMuted.Sprint("…")}
	}
	out := make([]string, len(tiles))
	for i, t := range tiles {
		out[i] = "[" + t + "]"
	}
	return out
}

func conversation(a *lesson.ConversationActivity) string {
	var b strings.Builder
	for i, line := range a.Lines {
		who := ColorSecondary.Sprint("App")
		if line.Speaker == schema.SpeakerLearner {
			who = ColorPrimary.Sprint("You")
		}
		fmt.Fprintf(&b, " %d. %s: %s%s", i+1, who, line.Text, phonetic(a.Gloss(i)))
		if line.Required() {
			fmt.Fprintf(&b, "  %s", attemptState(a.State(i)))
		}
		b.WriteString("\n")
		if heard := a.LastHeard(i); heard != "" {
			fmt.Fprintf(&b, "    %s\n", ColorMuted.Sprintf("You said: %s", heard))
		}
		if aid, ok := a.Hint(i); ok {
			writeAid(&b, aid.Primary, aid.Phonetic)
		}
	}
	b.WriteString(sayFooter(a.Notice(), a.LastError()))
	return b.String()
}

func assessment(a *lesson.AssessmentActivity) string {
	var b strings.Builder
	b.WriteString(ColorMuted.Sprint("Can you do these on your own?") + "\n")
	for i, task := range a.Tasks {
		fmt.Fprintf(&b, " %d. %s\n", i+1, task)
	}
	return b.String()
}
