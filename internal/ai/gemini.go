package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Bochyn/Image-to-video/internal/config"
	"google.golang.org/genai"
)

const defaultGeminiImageModel = "models/gemini-2.5-flash-image"

// ImageResult is what an image model returned: inline bytes, or a URI the
// bytes must be fetched from with Header.
type ImageResult struct {
	Data     []byte
	MIMEType string
	URL      string
	Header   http.Header
}

const geminiAPIHost = "generativelanguage.googleapis.com"

// GeminiImage generates images with a Gemini image model.
type GeminiImage struct {
	cfg config.ImageModel
}

func NewGeminiImage(cfg config.ImageModel) *GeminiImage {
	return &GeminiImage{cfg: cfg}
}

// Generate renders prompt, conditioned on ref when it is non-nil.
func (g *GeminiImage) Generate(ctx context.Context, prompt string, ref *Image) (ImageResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return ImageResult{}, err
	}

	parts := []*genai.Part{genai.NewPartFromText(g.promptText(prompt))}
	if ref != nil {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: ref.MIMEType, Data: ref.Data}})
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	res, err := client.Models.GenerateContent(ctx, mapModelForGemini(g.cfg.Model), contents, g.generateConfig())
	if err != nil {
		return ImageResult{}, err
	}
	out, err := extractImage(res)
	if err != nil {
		return ImageResult{}, err
	}
	out.Header = g.fileHeader(out.URL)
	return out, nil
}

// fileHeader authenticates downloads of files hosted by the Gemini API.
// Other URLs are expected to be signed or public.
func (g *GeminiImage) fileHeader(uri string) http.Header {
	u, err := url.Parse(uri)
	if err != nil || u.Host != geminiAPIHost || g.cfg.APIKey == "" {
		return nil
	}
	h := http.Header{}
	h.Set("x-goog-api-key", g.cfg.APIKey)
	return h
}

func (g *GeminiImage) generateConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}
	if g.cfg.Seed != 0 {
		cfg.Seed = genai.Ptr(g.cfg.Seed)
	}
	return cfg
}

// promptText appends the configured aspect ratio as a plain instruction.
func (g *GeminiImage) promptText(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if g.cfg.AspectRatio == "" {
		return prompt
	}
	return fmt.Sprintf("%s\n\nAspect ratio: %s.", prompt, g.cfg.AspectRatio)
}

// extractImage returns the first image part of the first candidate. Model
// text without an image is surfaced in the error so refusals are visible.
func extractImage(res *genai.GenerateContentResponse) (ImageResult, error) {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ImageResult{}, errors.New("no image returned by model")
	}
	var textOut strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return ImageResult{Data: part.InlineData.Data, MIMEType: mime}, nil
		}
		if part.FileData != nil && part.FileData.FileURI != "" {
			return ImageResult{URL: part.FileData.FileURI, MIMEType: part.FileData.MIMEType}, nil
		}
		if part.Text != "" {
			textOut.WriteString(part.Text)
		}
	}
	if s := strings.TrimSpace(textOut.String()); s != "" {
		if len(s) > 512 {
			s = s[:512] + "..."
		}
		return ImageResult{}, fmt.Errorf("no image returned by model: %s", s)
	}
	return ImageResult{}, errors.New("no image returned by model")
}

// mapModelForGemini normalizes model names for the native Gemini SDK.
// Accepts inputs like:
//   - "gemini-2.5-flash-image"
//   - "gemini-2.5-flash-image-preview:free"
//   - "google/gemini-2.5-flash-image"
//   - "models/gemini-2.5-flash-image"
//
// and returns a resource name like "models/gemini-2.5-flash-image".
func mapModelForGemini(model string) string {
	m := strings.TrimSpace(model)
	if m == "" {
		return defaultGeminiImageModel
	}
	if strings.HasPrefix(m, "models/") {
		return m
	}
	m = strings.TrimPrefix(m, "google/")
	if i := strings.IndexByte(m, ':'); i >= 0 {
		m = m[:i]
	}
	return "models/" + m
}
