package stt

import (
	"math/rand"
	"strings"
	"testing"
)

func tokensOf(text string, step float64) []Token {
	out := make([]Token, 0, len(text))
	for i, r := range text {
		out = append(out, Token{Text: string(r), StartTime: float64(i) * step})
	}
	return out
}

func TestSegmentExample(t *testing.T) {
	tokens := []Token{
		{Text: "H", StartTime: 0.0},
		{Text: "i", StartTime: 0.1},
		{Text: " ", StartTime: 0.2},
		{Text: "y", StartTime: 0.3},
		{Text: "o", StartTime: 0.4},
		{Text: "u", StartTime: 0.5},
	}
	got := Segment(tokens)
	want := []WordSegment{
		{Word: "Hi", StartTime: 0.0, Duration: 0.2},
		{Word: "you", StartTime: 0.3, Duration: 0.2},
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected words: %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("word %d: got=%+v want=%+v", i, got[i], want[i])
		}
	}
}

func TestSegmentEdgeCases(t *testing.T) {
	cases := []struct {
		name  string
		in    []Token
		words []string
	}{
		{name: "empty", in: nil, words: []string{}},
		{name: "single char", in: []Token{{Text: "a", StartTime: 1}}, words: []string{"a"}},
		{name: "trailing space", in: tokensOf("ab ", 0.1), words: []string{"ab"}},
		{name: "leading space", in: tokensOf(" ab", 0.1), words: []string{"", "ab"}},
		{name: "double space", in: tokensOf("a  b", 0.1), words: []string{"a", "", "b"}},
		{name: "only spaces", in: tokensOf("  ", 0.1), words: []string{"", ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Segment(tc.in)
			if len(got) != len(tc.words) {
				t.Fatalf("count: got=%d want=%d (%+v)", len(got), len(tc.words), got)
			}
			for i, w := range tc.words {
				if got[i].Word != w {
					t.Fatalf("word %d: got=%q want=%q", i, got[i].Word, w)
				}
			}
		})
	}
}

func TestSegmentEmptyWordTiming(t *testing.T) {
	// a@0 " "@0.1 " "@0.2 b@0.3: the second space closes an empty word
	// whose start was reset to 0.
	got := Segment(tokensOf("a  b", 0.1))
	if len(got) != 3 {
		t.Fatalf("words: %+v", got)
	}
	want := WordSegment{Word: "", StartTime: 0, Duration: 0.2}
	if got[1] != want {
		t.Fatalf("empty word: got=%+v want=%+v", got[1], want)
	}
}

func TestSegmentDurationNeverNegative(t *testing.T) {
	tokens := []Token{
		{Text: "a", StartTime: 2.0},
		{Text: "b", StartTime: 1.0},
		{Text: " ", StartTime: 0.5},
		{Text: "c", StartTime: 3.0},
		{Text: "d", StartTime: 3.0},
	}
	for _, w := range Segment(tokens) {
		if w.Duration < 0 {
			t.Fatalf("negative duration: %+v", w)
		}
	}

	r := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		var toks []Token
		for i := 0; i < 1+r.Intn(20); i++ {
			text := string(rune('a' + r.Intn(26)))
			if r.Intn(4) == 0 {
				text = " "
			}
			toks = append(toks, Token{Text: text, StartTime: r.Float64() * 10})
		}
		for _, w := range Segment(toks) {
			if w.Duration < 0 {
				t.Fatalf("negative duration for %+v: %+v", toks, w)
			}
		}
	}
}

func TestSegmentReconstructsText(t *testing.T) {
	texts := []string{"hello world", "a b c", "one", "the quick brown fox"}
	for _, text := range texts {
		words := Segment(tokensOf(text, 0.05))
		if len(words) != len(strings.Fields(text)) {
			t.Fatalf("%q: word count got=%d want=%d", text, len(words), len(strings.Fields(text)))
		}
		parts := make([]string, 0, len(words))
		for _, w := range words {
			parts = append(parts, w.Word)
		}
		if got := strings.Join(parts, " "); got != text {
			t.Fatalf("reconstruct: got=%q want=%q", got, text)
		}
	}
}

func TestSegmentRoundsToFourDecimals(t *testing.T) {
	tokens := []Token{
		{Text: "a", StartTime: 0.123456},
		{Text: " ", StartTime: 0.987654},
	}
	got := Segment(tokens)
	if got[0].StartTime != 0.1235 || got[0].Duration != 0.8642 {
		t.Fatalf("rounding: %+v", got[0])
	}
}

func TestBuildResult(t *testing.T) {
	meta := &Metadata{Transcripts: []Transcript{
		{Confidence: -10.5, Tokens: tokensOf("hi  there", 0.1)},
		{Confidence: -12, Tokens: tokensOf("high air", 0.1)},
	}}
	res := BuildResult(meta)
	if res.Full != "hi  there" {
		t.Fatalf("full must preserve spaces: %q", res.Full)
	}
	if len(res.Transcripts) != 2 {
		t.Fatalf("transcripts: %d", len(res.Transcripts))
	}
	if res.Transcripts[0].Confidence != -10.5 {
		t.Fatalf("confidence: %v", res.Transcripts[0].Confidence)
	}
	if len(res.Transcripts[1].Words) != 2 {
		t.Fatalf("second transcript words: %+v", res.Transcripts[1].Words)
	}

	empty := BuildResult(&Metadata{})
	if empty.Transcripts == nil || empty.Full != "" {
		t.Fatalf("empty metadata: %+v", empty)
	}
}

func TestTokensFromWords(t *testing.T) {
	tokens := TokensFromWords([]TimedWord{
		{Word: " hello", Start: 0.0, End: 0.5},
		{Word: "", Start: 0.5, End: 0.6},
		{Word: "you", Start: 0.7, End: 1.0},
	})
	if got := FullText(Transcript{Tokens: tokens}); got != "hello you" {
		t.Fatalf("full: %q", got)
	}
	words := Segment(tokens)
	if len(words) != 2 {
		t.Fatalf("words: %+v", words)
	}
	if words[0].Word != "hello" || words[0].StartTime != 0 || words[0].Duration != 0.5 {
		t.Fatalf("first word: %+v", words[0])
	}
	if words[1].Word != "you" || words[1].StartTime != 0.7 || words[1].Duration != 0.3 {
		t.Fatalf("second word: %+v", words[1])
	}
}

func TestTokensFromWordsKeepsFinalWordDuration(t *testing.T) {
	cases := []struct {
		name  string
		words []TimedWord
		want  []WordSegment
	}{
		{
			name:  "two words",
			words: []TimedWord{{Word: "Hi", Start: 0, End: 0.2}, {Word: "you", Start: 0.3, End: 0.5}},
			want:  []WordSegment{{Word: "Hi", StartTime: 0, Duration: 0.2}, {Word: "you", StartTime: 0.3, Duration: 0.2}},
		},
		{
			name: "single char last word",
			words: []TimedWord{
				{Word: "Hi", Start: 0, End: 0.2},
				{Word: "you", Start: 0.3, End: 0.5},
				{Word: "a", Start: 0.6, End: 0.7},
			},
			want: []WordSegment{
				{Word: "Hi", StartTime: 0, Duration: 0.2},
				{Word: "you", StartTime: 0.3, Duration: 0.2},
				{Word: "a", StartTime: 0.6, Duration: 0.1},
			},
		},
		{
			name:  "one word",
			words: []TimedWord{{Word: "x", Start: 1.5, End: 2}},
			want:  []WordSegment{{Word: "x", StartTime: 1.5, Duration: 0.5}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Segment(TokensFromWords(tc.words))
			if len(got) != len(tc.want) {
				t.Fatalf("words: %+v", got)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("word %d: got=%+v want=%+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestTokensFromWordsEmpty(t *testing.T) {
	if got := TokensFromWords(nil); len(got) != 0 {
		t.Fatalf("tokens: %+v", got)
	}
}
