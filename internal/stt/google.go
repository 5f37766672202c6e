package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chat-apropo/speech-api/internal/logger"
	"github.com/chat-apropo/speech-api/internal/media"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleSpeechEndpoint = "https://speech.googleapis.com/v1/speech:recognize"

// GoogleRecognizer implements STT using the Google Cloud Speech-to-Text REST
// API with word time offsets.
type GoogleRecognizer struct {
	projectID  string
	apiKey     string
	endpoint   string
	httpClient *http.Client
	useAPIKey  bool
	log        *logger.Logger
}

// IsGoogleAPIKey reports whether keyData looks like an API key (39 chars,
// "AIzaSy" prefix) rather than service account credentials.
func IsGoogleAPIKey(keyData string) bool {
	k := strings.TrimSpace(keyData)
	return len(k) == 39 && strings.HasPrefix(k, "AIzaSy")
}

// NewGoogleRecognizer creates a Google recognizer.
// keyData can be either:
//   - An API key (39 characters, typically starts with "AIzaSy")
//   - A file path to a JSON key file (e.g., "./keys/google-service-account.json")
//   - A JSON string containing the service account credentials
//   - Empty, to use application default credentials
func NewGoogleRecognizer(ctx context.Context, projectID, keyData string, timeout time.Duration, log *logger.Logger) (*GoogleRecognizer, error) {
	log = log.With("engine", "google")
	keyData = strings.TrimSpace(keyData)

	if IsGoogleAPIKey(keyData) {
		log.Info("using API key authentication")
		return &GoogleRecognizer{
			projectID:  projectID,
			apiKey:     keyData,
			endpoint:   googleSpeechEndpoint,
			httpClient: &http.Client{Timeout: timeout},
			useAPIKey:  true,
			log:        log,
		}, nil
	}

	const scope = "https://www.googleapis.com/auth/cloud-platform"
	var creds *google.Credentials
	var err error
	switch {
	case keyData == "":
		creds, err = google.FindDefaultCredentials(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w. Please set GOOGLE_STT_KEY_FILE", err)
		}
	case strings.HasPrefix(keyData, "{"):
		log.Info("using JSON credentials from environment variable")
		creds, err = google.CredentialsFromJSON(ctx, []byte(keyData), scope)
	default:
		log.Info("reading key file", "path", keyData)
		var data []byte
		data, err = os.ReadFile(keyData)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file '%s': %w", keyData, err)
		}
		creds, err = google.CredentialsFromJSON(ctx, data, scope)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
	}

	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = timeout
	return &GoogleRecognizer{
		projectID:  projectID,
		endpoint:   googleSpeechEndpoint,
		httpClient: client,
		log:        log,
	}, nil
}

func (r *GoogleRecognizer) Name() string { return "google" }

func (r *GoogleRecognizer) SampleRate() int { return 16000 }

func (r *GoogleRecognizer) Version(ctx context.Context) (string, error) {
	return "google speech v1", nil
}

type googleRequest struct {
	Config googleConfig `json:"config"`
	Audio  googleAudio  `json:"audio"`
}

type googleConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	MaxAlternatives            int    `json:"maxAlternatives,omitempty"`
	EnableWordTimeOffsets      bool   `json:"enableWordTimeOffsets"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

type googleAudio struct {
	Content string `json:"content"` // Base64 encoded
}

type googleResponse struct {
	Results []struct {
		Alternatives []googleAlternative `json:"alternatives"`
	} `json:"results"`
	Error *googleError `json:"error,omitempty"`
}

type googleAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Words      []struct {
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
		Word      string `json:"word"`
	} `json:"words"`
}

type googleError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (r *GoogleRecognizer) Recognize(ctx context.Context, lang string, pcm *media.PCM, candidates int) (*Metadata, error) {
	reqJSON, err := json.Marshal(googleRequest{
		Config: googleConfig{
			Encoding:              "LINEAR16",
			SampleRateHertz:       pcm.SampleRate,
			LanguageCode:          lang,
			MaxAlternatives:       candidates,
			EnableWordTimeOffsets: true,
		},
		Audio: googleAudio{Content: base64.StdEncoding.EncodeToString(media.EncodeRaw(pcm))},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := r.endpoint
	if r.useAPIKey {
		apiURL += "?key=" + r.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.projectID != "" {
		req.Header.Set("X-Goog-User-Project", r.projectID)
	}

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Google Speech-to-Text: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var sttResp googleResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("Google Speech-to-Text API returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to parse Google Speech-to-Text response: %w", err)
	}
	if sttResp.Error != nil {
		return nil, fmt.Errorf("Google Speech-to-Text API error: %s (%s)", sttResp.Error.Message, sttResp.Error.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Google Speech-to-Text API returned status %d", resp.StatusCode)
	}

	meta := googleMetadata(sttResp, candidates)
	r.log.Debug("recognition done", "lang", lang, "results", len(sttResp.Results), "took", time.Since(start))
	return meta, nil
}

// googleMetadata merges the sequential results of a response into up to
// candidates transcripts. Candidate k takes alternative k of every result,
// falling back to the best alternative where fewer were returned.
func googleMetadata(resp googleResponse, candidates int) *Metadata {
	n := 0
	for _, res := range resp.Results {
		if len(res.Alternatives) > n {
			n = len(res.Alternatives)
		}
	}
	if candidates > 0 && n > candidates {
		n = candidates
	}

	meta := &Metadata{Transcripts: make([]Transcript, 0, n)}
	for k := 0; k < n; k++ {
		var (
			words      []TimedWord
			confidence float64
			counted    int
		)
		for _, res := range resp.Results {
			if len(res.Alternatives) == 0 {
				continue
			}
			alt := res.Alternatives[0]
			if k < len(res.Alternatives) {
				alt = res.Alternatives[k]
			}
			confidence += alt.Confidence
			counted++
			if len(alt.Words) == 0 {
				for _, w := range strings.Fields(alt.Transcript) {
					words = append(words, TimedWord{Word: w})
				}
				continue
			}
			for _, w := range alt.Words {
				words = append(words, TimedWord{
					Word:  w.Word,
					Start: parseGoogleOffset(w.StartTime),
					End:   parseGoogleOffset(w.EndTime),
				})
			}
		}
		if counted > 0 {
			confidence /= float64(counted)
		}
		meta.Transcripts = append(meta.Transcripts, Transcript{
			Confidence: confidence,
			Tokens:     TokensFromWords(words),
		})
	}
	return meta
}

// parseGoogleOffset parses durations such as "1.300s".
func parseGoogleOffset(s string) float64 {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return d.Seconds()
}
