package metric

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	mnet "github.com/mltrust/mltrust/pkg/net"
)

const (
	judgeSystemPrompt = "You are a precise software onboarding evaluator.\n" +
		"Given a repository README and a brief repo file listing, rate how fast a new engineer could ramp up.\n" +
		"Consider ONLY: installation clarity, prerequisites, quickstart/usage examples, runnable commands, troubleshooting,\n" +
		"links to docs/tutorials, and overall coherence/structure of the README.\n\n" +
		"Return STRICT JSON with two fields:\n" +
		`{"score": <float between 0 and 1>, "rationale": "<<=200 chars explanation>"}` + "\n\n" +
		"Do NOT include anything else."

	judgeReadmeCap = 20000
	judgeTreeCap   = 8000
	judgeMaxTokens = 220
)

var (
	thinkBlockRe  = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFenceRe   = regexp.MustCompile("(?i)^```(?:json)?\\s*|\\s*```$")
	unitNumberRe  = regexp.MustCompile(`\b(0(?:\.\d+)?|1(?:\.0+)?)\b`)
	errJudgeReply = errors.New("judge returned no usable score")
)

// Judge rates onboarding readiness from a README and a file
// listing. Implementations may call out to an LLM service.
type Judge interface {
	Score(ctx context.Context, readme, tree string) (float64, error)
}

// GenAIJudge asks an OpenAI-compatible chat completion endpoint for
// a strict-JSON score, salvaging loosely formatted replies.
type GenAIJudge struct {
	client   *http.Client
	apiKey   string
	endpoint string
	model    string
}

func NewGenAIJudge(apiKey, endpoint, model string) *GenAIJudge {
	client, err := mnet.GetHTTPClient()
	if err != nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}
	return &GenAIJudge{
		client:   client,
		apiKey:   apiKey,
		endpoint: endpoint,
		model:    model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens"`
	Temperature    float64       `json:"temperature"`
	TopP           float64       `json:"top_p"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	OutputText string `json:"output_text"`
	Text       string `json:"text"`
}

func (j *GenAIJudge) Score(ctx context.Context, readme, tree string) (float64, error) {
	if len(readme) > judgeReadmeCap {
		readme = readme[:judgeReadmeCap] + "\n\n[TRUNCATED]"
	}
	if len(tree) > judgeTreeCap {
		tree = tree[:judgeTreeCap]
	}

	prompt := "REPO SUMMARY\n----------------\n" + tree +
		"\n\nREADME (truncated if very long)\n----------------\n" + readme +
		"\n\nReturn ONLY strict JSON: {\"score\": <float 0..1>, \"rationale\": \"<=200 chars\"}."

	req := chatRequest{
		Model: j.model,
		Messages: []chatMessage{
			{Role: "system", Content: judgeSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   judgeMaxTokens,
		Temperature: 0.0,
		TopP:        1.0,
	}
	req.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(req)
	if err != nil {
		return 0, errors.Wrap(err, "failed to encode judge request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, j.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, errors.Wrap(err, "failed to create judge request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+j.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(httpReq)
	if err != nil {
		return 0, errors.Wrap(err, "judge request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("judge returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, errors.Wrap(err, "failed to read judge response")
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, errors.Wrap(err, "failed to decode judge response")
	}

	content := out.OutputText
	if len(out.Choices) > 0 {
		content = out.Choices[0].Message.Content
	} else if content == "" {
		content = out.Text
	}

	score, ok := parseJudgeScore(content)
	if !ok {
		return 0, errJudgeReply
	}
	return clamp01(score), nil
}

// parseJudgeScore extracts a score from model output: strict JSON
// first, then the first balanced JSON object found by brace
// scanning, then any bare number in [0,1].
func parseJudgeScore(content string) (float64, bool) {
	content = thinkBlockRe.ReplaceAllString(content, "")
	content = codeFenceRe.ReplaceAllString(strings.TrimSpace(content), "")
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, false
	}

	if obj := firstJSONObject(content); obj != "" {
		var parsed struct {
			Score *float64 `json:"score"`
		}
		if err := json.Unmarshal([]byte(obj), &parsed); err == nil && parsed.Score != nil {
			return *parsed.Score, true
		}
	}

	if m := unitNumberRe.FindString(content); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// firstJSONObject returns the first balanced {...} in s, tracking
// string literals so braces inside quotes do not count.
func firstJSONObject(s string) string {
	depth, start := 0, -1
	inStr, esc := false, false
	var quote byte

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case ch == '\\':
				esc = true
			case ch == quote:
				inStr = false
			}
			continue
		}
		switch ch {
		case '"', '\'':
			inStr = true
			quote = ch
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					candidate := s[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate
					}
					start = -1
				}
			}
		}
	}
	return ""
}
