package stt

import (
	"math"
	"strings"
	"unicode/utf8"
)

const wordBoundary = " "

// Segment turns the ordered tokens of one transcript into timed words.
//
// A word ends at a space token or at the last token. The word start resets
// to 0 after each word, so a space that follows another space yields an
// empty word starting at 0 whose duration is the space's own start time.
// Empty words are kept.
func Segment(tokens []Token) []WordSegment {
	words := make([]WordSegment, 0)
	var (
		buf       strings.Builder
		wordStart float64
	)
	for i, tok := range tokens {
		if tok.Text != wordBoundary {
			if buf.Len() == 0 {
				wordStart = tok.StartTime
			}
			buf.WriteString(tok.Text)
		}
		if tok.Text == wordBoundary || i == len(tokens)-1 {
			duration := tok.StartTime - wordStart
			if duration < 0 {
				duration = 0
			}
			words = append(words, WordSegment{
				Word:      buf.String(),
				StartTime: round4(wordStart),
				Duration:  round4(duration),
			})
			buf.Reset()
			wordStart = 0
		}
	}
	return words
}

// FullText concatenates every token of a transcript verbatim.
func FullText(t Transcript) string {
	var sb strings.Builder
	for _, tok := range t.Tokens {
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

// BuildResult shapes recognizer metadata into the response body. Full is
// taken from the best (first) transcript.
func BuildResult(meta *Metadata) *Result {
	res := &Result{Transcripts: make([]TranscriptWords, 0)}
	if meta == nil {
		return res
	}
	for _, t := range meta.Transcripts {
		res.Transcripts = append(res.Transcripts, TranscriptWords{
			Confidence: t.Confidence,
			Words:      Segment(t.Tokens),
		})
	}
	if len(meta.Transcripts) > 0 {
		res.Full = FullText(meta.Transcripts[0])
	}
	return res
}

// TokensFromWords expands word-level timings into character tokens so that
// word-level engines share the segmenter. Characters are spread evenly over
// the word span, a space token at the word's end separates words, and an
// empty token at the last word's end closes the final word.
func TokensFromWords(words []TimedWord) []Token {
	tokens := make([]Token, 0)
	prevEnd := -1.0
	for _, w := range words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		if prevEnd >= 0 {
			tokens = append(tokens, Token{Text: wordBoundary, StartTime: prevEnd})
		}

		end := w.End
		if end < w.Start {
			end = w.Start
		}
		step := (end - w.Start) / float64(utf8.RuneCountInString(text))
		i := 0
		for _, r := range text {
			tokens = append(tokens, Token{Text: string(r), StartTime: w.Start + step*float64(i)})
			i++
		}
		prevEnd = end
	}
	if prevEnd >= 0 {
		tokens = append(tokens, Token{Text: "", StartTime: prevEnd})
	}
	return tokens
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
