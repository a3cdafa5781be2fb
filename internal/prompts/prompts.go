package prompts

import (
	"fmt"
	"strings"
)

// StyleInstruction returns the vision instruction used to describe an image's
// visual style without describing its subject.
func StyleInstruction() string {
	var b strings.Builder
	b.WriteString("Analyze this image focusing EXCLUSIVELY on its visual style, artistic technique, and aesthetic properties. DO NOT describe the content or subject matter in detail.\n\n")
	b.WriteString("Focus your analysis on:\n\n")
	b.WriteString("1. COLOR PALETTE: Describe the dominant colors, color harmonies, saturation levels, and overall color mood (warm/cool/neutral).\n\n")
	b.WriteString("2. LINE WORK & EDGES: Analyze line weights, line styles (solid, dashed, sketchy), edge treatment (sharp, soft, blurred), and overall linework character.\n\n")
	b.WriteString("3. RENDERING STYLE: Identify the artistic technique (watercolor, pencil sketch, digital vector, 3D render, technical drawing, etc.) and texture qualities.\n\n")
	b.WriteString("4. VISUAL EFFECTS: Note any special effects like gradients, shadows, transparency, grain, noise, or post-processing effects.\n\n")
	b.WriteString("5. COMPOSITION STYLE: Describe the visual hierarchy, spacing, balance, and overall compositional approach without focusing on specific content.\n\n")
	b.WriteString("6. MOOD & ATMOSPHERE: Capture the emotional tone conveyed through the visual style choices.\n\n")
	b.WriteString("Provide a comprehensive style description that could be used to recreate this aesthetic in a different context. Be specific about technical aspects that define this visual style.")
	return b.String()
}

// CreatorSystemPrompt turns a style description into a generation-ready prompt.
func CreatorSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are an intelligent prompt engineer. Your role is to create a precise, effective prompt for an AI image generation model from a visual style description.\n\n")
	b.WriteString("Your task is to:\n")
	b.WriteString("1. Carefully analyze the style description.\n")
	b.WriteString("2. Keep the stylistic elements that define the look: palette, technique, line work, texture, mood.\n")
	b.WriteString("3. Produce a concise, final prompt (max 75 words) that includes keywords, techniques, and quality modifiers suitable for image generation models.\n\n")
	b.WriteString("EXAMPLE:\n")
	b.WriteString("- Description: \"A detailed illustration of a red brick building, with sharp lines and a warm color palette.\"\n")
	b.WriteString("- Prompt: \"architectural illustration of a red brick building, detailed, sharp lines, warm color palette, high quality\"\n\n")
	b.WriteString("Return only the prompt text, without quotes or commentary.")
	return b.String()
}

// EnhancerSystemPrompt rewrites an existing prompt according to a modification request.
func EnhancerSystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a \"Prompt Enhancer\". Your task is to refine an existing image generation prompt based on a user's modification request.\n\n")
	b.WriteString("You will be given:\n")
	b.WriteString("1. An \"original prompt\".\n")
	b.WriteString("2. A \"modification request\" from the user.\n\n")
	b.WriteString("Create a new, enhanced prompt that seamlessly integrates the request into the original prompt. The new prompt must be a cohesive, standalone piece of text, not the old prompt with the request tacked on. It should be ready to be fed directly into an image generation model.\n\n")
	b.WriteString("EXAMPLE:\n")
	b.WriteString("- Original Prompt: \"A hyper-realistic photo of a serene forest in autumn, with golden leaves and a gentle stream.\"\n")
	b.WriteString("- Modification Request: \"Add a mythical creature, like a unicorn, drinking from the stream.\"\n")
	b.WriteString("- Enhanced Prompt: \"A hyper-realistic photo of a serene forest in autumn, with golden leaves and a gentle stream where a majestic unicorn is drinking water.\"\n\n")
	b.WriteString("Return only the enhanced prompt.")
	return b.String()
}

// BuildEnhancementRequest is the user message sent alongside EnhancerSystemPrompt.
func BuildEnhancementRequest(originalPrompt, modification string) string {
	return fmt.Sprintf("The previous prompt was: '%s'. The user wants to modify it with these instructions: '%s'.",
		strings.TrimSpace(originalPrompt), strings.TrimSpace(modification))
}

// VideoParams are the fixed generation parameters appended to a video prompt.
type VideoParams struct {
	DurationSeconds int
	Resolution      string
	CameraFixed     bool
	NegativePrompt  string
}

// BuildVideoPrompt joins the user prompt, the negative prompt and the inline
// generation parameters understood by the video model.
func BuildVideoPrompt(prompt string, p VideoParams) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(prompt))
	if neg := strings.TrimSpace(p.NegativePrompt); neg != "" {
		b.WriteString("\n\nAvoid: ")
		b.WriteString(neg)
	}
	var params []string
	if p.Resolution != "" {
		params = append(params, "--resolution "+p.Resolution)
	}
	if p.DurationSeconds > 0 {
		params = append(params, fmt.Sprintf("--duration %d", p.DurationSeconds))
	}
	if p.CameraFixed {
		params = append(params, "--camerafixed true")
	}
	if len(params) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(params, " "))
	}
	return b.String()
}
