package subtitle

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestSynthesizeContiguousCues(t *testing.T) {
	timer := NewTimer()
	text := "First sentence here. Second one is a bit longer than the first. Third!"
	total := 12 * time.Second

	cues, err := timer.Synthesize(text, total)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(cues))
	}

	if cues[0].Start != 0 {
		t.Errorf("first cue must start at 0, got %v", cues[0].Start)
	}

	for i, cue := range cues {
		if cue.Index != i+1 {
			t.Errorf("cue %d: expected index %d, got %d", i, i+1, cue.Index)
		}
		if cue.End < cue.Start {
			t.Errorf("cue %d: reversed interval %v -> %v", i, cue.Start, cue.End)
		}
		if i > 0 && cues[i-1].End != cue.Start {
			t.Errorf("gap between cue %d and %d: %v != %v", i-1, i, cues[i-1].End, cue.Start)
		}
	}

	last := cues[len(cues)-1].End
	if last != total-timer.TrailingPad {
		t.Errorf("last cue should end at effective duration %v, got %v", total-timer.TrailingPad, last)
	}
}

func TestSynthesizeProportionalAllocation(t *testing.T) {
	timer := NewTimer()
	cues, err := timer.Synthesize("Cats are great. They sleep a lot.", 6*time.Second)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}

	if cues[0].Text != "Cats are great." {
		t.Errorf("cue 1 text: got %q", cues[0].Text)
	}
	if cues[1].Text != "They sleep a lot." {
		t.Errorf("cue 2 text: got %q", cues[1].Text)
	}

	// 3 of 7 words over 5.5s effective duration: ~2.36s
	want := 2357 * time.Millisecond
	if diff := cues[0].End - want; diff < -50*time.Millisecond || diff > 50*time.Millisecond {
		t.Errorf("cue 1 end: expected ~%v, got %v", want, cues[0].End)
	}

	if cues[1].End != 5500*time.Millisecond {
		t.Errorf("cue 2 end: expected 5.5s, got %v", cues[1].End)
	}
}

func TestSynthesizeDegenerateDuration(t *testing.T) {
	timer := NewTimer()
	total := 400 * time.Millisecond // effective duration goes negative after the pad

	cues, err := timer.Synthesize("One. Two. Three. Four.", total)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if len(cues) != 4 {
		t.Fatalf("expected 4 cues, got %d", len(cues))
	}

	for i, cue := range cues {
		if cue.Start < 0 || cue.End > total {
			t.Errorf("cue %d: interval [%v, %v] outside [0, %v]", i, cue.Start, cue.End, total)
		}
		if cue.End < cue.Start {
			t.Errorf("cue %d: reversed interval", i)
		}
		if i > 0 && cue.Start < cues[i-1].End {
			t.Errorf("cue %d overlaps previous", i)
		}
	}
}

func TestSynthesizeDegenerateIsDeterministic(t *testing.T) {
	timer := NewTimer()
	a, err := timer.Synthesize("Alpha. Beta.", 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	b, _ := timer.Synthesize("Alpha. Beta.", 200*time.Millisecond)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("cue %d differs across runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	timer := NewTimer()
	if _, err := timer.Synthesize("   ", 5*time.Second); err != ErrNoContent {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple",
			text: "Hello there. How are you? Fine!",
			want: []string{"Hello there.", "How are you?", "Fine!"},
		},
		{
			name: "abbreviation mid sentence",
			text: "Use tools, e.g. a hammer. Then stop.",
			want: []string{"Use tools, e.g. a hammer.", "Then stop."},
		},
		{
			name: "newline separated",
			text: "Title here.\nBody starts now. And continues.",
			want: []string{"Title here.", "Body starts now.", "And continues."},
		},
		{
			name: "no terminator",
			text: "just a fragment",
			want: []string{"just a fragment"},
		},
		{
			name: "empty",
			text: "  ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d sentences, got %d: %q", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestWriteSRT(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 0, End: 2400 * time.Millisecond, Text: "Cats are great."},
		{Index: 2, Start: 2400 * time.Millisecond, End: 5500 * time.Millisecond, Text: "They sleep a lot."},
	}

	path := t.TempDir() + "/out.srt"
	if err := WriteSRT(cues, path); err != nil {
		t.Fatalf("WriteSRT returned error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	data := string(raw)

	want := "1\n00:00:00,000 --> 00:00:02,400\nCats are great.\n\n" +
		"2\n00:00:02,400 --> 00:00:05,500\nThey sleep a lot.\n\n"
	if data != want {
		t.Errorf("unexpected SRT output:\n%s", data)
	}

	if !strings.Contains(data, " --> ") {
		t.Error("missing timestamp separator")
	}
}
