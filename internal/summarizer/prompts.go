package summarizer

import (
	"fmt"
	"strings"
)

const (
	// DefaultSystemPrompt is the system prompt used when none is configured.
	DefaultSystemPrompt = "You are a helpful medical summarization assistant. " +
		"Write in clear language aimed at clinicians. Use concise bullet points. " +
		"Attribute speaker insights when relevant. Never invent facts."

	// DefaultUserPrompt is the instruction used when none is configured.
	DefaultUserPrompt = "Summarize the text below for a physician. Structure it as: " +
		"1) Context, 2) Key points, 3) Decisions/Actions, 4) Open questions. " +
		"Keep important figures, concise style."
)

const (
	directTemplate    = "%s\n\nText to summarize:\n```text\n%s\n```"
	chunkTemplate     = "%s\n\nYou are summarizing **chunk %d/%d** below.\n```text\n%s\n```"
	partialTemplate   = "### Chunk %d\n%s"
	synthesisTemplate = "%s\n\nHere are the chunk summaries:\n%s\n\n" +
		"Produce **a single final summary**, structured. Do not repeat chunk by chunk."
)

func directPrompt(instruction, text string) string {
	return fmt.Sprintf(directTemplate, instruction, text)
}

func chunkPrompt(instruction string, index, total int, text string) string {
	return fmt.Sprintf(chunkTemplate, instruction, index, total, text)
}

func tagPartial(index int, summary string) string {
	return fmt.Sprintf(partialTemplate, index, summary)
}

func synthesisPrompt(instruction string, partials []string) string {
	return fmt.Sprintf(synthesisTemplate, instruction, strings.Join(partials, "\n\n"))
}
