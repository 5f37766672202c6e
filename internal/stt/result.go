package stt

// Token is one recognized unit (a character or a space) with its start time
// in seconds.
type Token struct {
	Text      string  `json:"text"`
	Timestep  int     `json:"timestep,omitempty"`
	StartTime float64 `json:"start_time"`
}

// Transcript is one candidate hypothesis.
type Transcript struct {
	Confidence float64 `json:"confidence"`
	Tokens     []Token `json:"tokens"`
}

// Metadata is the raw output of a recognizer, candidates ordered best first.
type Metadata struct {
	Transcripts []Transcript `json:"transcripts"`
}

// WordSegment is a timed word derived from tokens.
type WordSegment struct {
	Word      string  `json:"word"`
	StartTime float64 `json:"start_time"`
	Duration  float64 `json:"duration"`
}

// TranscriptWords is a candidate transcript shaped for the response.
type TranscriptWords struct {
	Confidence float64       `json:"confidence"`
	Words      []WordSegment `json:"words"`
}

// Result is the JSON body returned for a recognition request.
type Result struct {
	Transcripts []TranscriptWords `json:"transcripts"`
	Full        string            `json:"full"`
}

// TimedWord is word-level output from engines that do not report
// per-character timing.
type TimedWord struct {
	Word  string
	Start float64
	End   float64
}
