package intake

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const ocrSystemPrompt = `You transcribe photographed math problems. Extract the problem statement exactly as written, converting mathematical notation to plain text (e.g. x^2 for superscripts, sqrt() for radicals). Ignore any worked solutions or scratch marks around the problem.

Respond with JSON:
{"text": "the problem statement", "confidence": 0.0-1.0}

Set confidence low when handwriting is unclear or the image does not contain a math problem.`

// VisionOCR extracts problem text from images using a vision-capable
// chat model.
type VisionOCR struct {
	client *openai.Client
	model  string
}

// NewVisionOCR creates an image reader backed by the given model.
// An empty model defaults to gpt-4o.
func NewVisionOCR(client *openai.Client, model string) *VisionOCR {
	if model == "" {
		model = "gpt-4o"
	}
	return &VisionOCR{client: client, model: model}
}

func (v *VisionOCR) ReadImage(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	mime, err := imageMIME(path)
	if err != nil {
		return nil, err
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     v.model,
		MaxTokens: 1024,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: ocrSystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Extract the math problem from this image.",
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("vision request: empty response")
	}

	var extracted struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	content := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &extracted); err != nil {
		// Model ignored the JSON instruction; take the raw text at
		// reduced confidence.
		extracted.Text = strings.TrimSpace(resp.Choices[0].Message.Content)
		extracted.Confidence = 0.5
	}

	extracted.Text = strings.TrimSpace(extracted.Text)
	if extracted.Text == "" {
		return nil, fmt.Errorf("no problem text found in image")
	}

	return &Result{
		Text:        extracted.Text,
		Confidence:  extracted.Confidence,
		NeedsReview: extracted.Confidence < reviewThreshold,
	}, nil
}

func imageMIME(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".webp":
		return "image/webp", nil
	case ".gif":
		return "image/gif", nil
	default:
		return "", fmt.Errorf("unsupported image format %q", filepath.Ext(path))
	}
}

// stripFences removes a surrounding markdown code fence, which some
// models add around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
