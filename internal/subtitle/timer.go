package subtitle

import (
	"strings"
	"time"
	"unicode"
)

// Timer converts narration text plus a measured audio duration into
// proportionally allocated caption cues.
type Timer struct {
	// TrailingPad compensates for the synthesis lead-out at the end of the
	// audio; cues are laid out over duration - TrailingPad.
	TrailingPad time.Duration
	// MinCueDuration is the floor applied to every cue when the effective
	// duration degenerates to zero or below.
	MinCueDuration time.Duration
}

func NewTimer() *Timer {
	return &Timer{
		TrailingPad:    500 * time.Millisecond,
		MinCueDuration: 300 * time.Millisecond,
	}
}

// Synthesize splits text into sentences and allocates each one a share of
// the audio duration proportional to its word count. Cues are contiguous,
// start at zero and never extend past audioDuration.
func (t *Timer) Synthesize(text string, audioDuration time.Duration) ([]Cue, error) {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil, ErrNoContent
	}

	if audioDuration < 0 {
		audioDuration = 0
	}

	effective := audioDuration - t.TrailingPad
	if effective <= 0 {
		return t.compressed(sentences, audioDuration), nil
	}

	totalWords := 0
	counts := make([]int, len(sentences))
	for i, s := range sentences {
		counts[i] = len(strings.Fields(s))
		totalWords += counts[i]
	}

	perWord := effective / time.Duration(totalWords)

	cues := make([]Cue, 0, len(sentences))
	var start time.Duration
	for i, s := range sentences {
		end := start + time.Duration(counts[i])*perWord
		if i == len(sentences)-1 {
			// absorb rounding so the last cue closes the narration
			end = effective
		}
		cues = append(cues, Cue{
			Index: i + 1,
			Start: start,
			End:   end,
			Text:  s,
		})
		start = end
	}

	return cues, nil
}

// compressed handles degenerate durations: every sentence receives the floor
// duration, then the whole layout is scaled to fit inside audioDuration.
func (t *Timer) compressed(sentences []string, audioDuration time.Duration) []Cue {
	floor := t.MinCueDuration
	total := floor * time.Duration(len(sentences))

	scale := 1.0
	if total > audioDuration {
		scale = float64(audioDuration) / float64(total)
	}

	per := time.Duration(float64(floor) * scale)

	cues := make([]Cue, 0, len(sentences))
	var start time.Duration
	for i, s := range sentences {
		end := start + per
		if end > audioDuration {
			end = audioDuration
		}
		cues = append(cues, Cue{
			Index: i + 1,
			Start: start,
			End:   end,
			Text:  s,
		})
		start = end
	}

	return cues
}

// sentence terminators recognized by the splitter
func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

// SplitSentences breaks narration text on sentence boundaries. A boundary is
// a terminator run followed by whitespace and an upper-case letter, digit or
// opening quote, which keeps mid-sentence abbreviations like "e.g. the"
// from splitting.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}

		// consume the terminator run (e.g. "?!" or "...")
		j := i
		for j+1 < len(runes) && (isTerminator(runes[j+1]) || runes[j+1] == '"' || runes[j+1] == '\'') {
			j++
		}

		// boundary only when followed by whitespace and a sentence opener
		k := j + 1
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k == j+1 && k < len(runes) {
			continue // no whitespace after the terminator, not a boundary
		}
		if k < len(runes) && !isSentenceOpener(runes[k]) {
			continue
		}

		s := strings.TrimSpace(string(runes[start : j+1]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = k
		i = k - 1
	}

	if start < len(runes) {
		s := strings.TrimSpace(string(runes[start:]))
		if s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

func isSentenceOpener(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsDigit(r) || r == '"' || r == '\'' || r == '(' || r == '“'
}
