package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxPromptRunes bounds the document text placed in a single prompt
const maxPromptRunes = 30000

const summarizeSystem = "You are an assistant that writes concise, accurate summaries of workplace documents. Use short paragraphs or bullet points. Do not invent facts."

// SummarizePrompt builds the user prompt for summarizing text of a given kind
func SummarizePrompt(text, kind string) string {
	if kind == "" {
		kind = "document"
	}
	return fmt.Sprintf(`Summarize the following %s.

Focus on:
1. The main purpose or topic
2. Decisions, owners and deadlines
3. Open questions or risks

%s:
%s`, kind, strings.ToUpper(kind[:1])+kind[1:], clip(text))
}

// KeyPointsPrompt wraps content in the fixed key-point extraction instruction
func KeyPointsPrompt(content string) string {
	return fmt.Sprintf(`Extract the key points from the content below.

Rules:
1. Return 3 to 7 bullet points, one line each, starting with "- "
2. Keep each point under 25 words
3. Only use information present in the content

Content:
%s`, clip(content))
}

// ChatSystemPrompt frames a workspace chat around its aggregated context
func ChatSystemPrompt(workspaceContext string) string {
	if strings.TrimSpace(workspaceContext) == "" {
		return "You are a helpful assistant for a personal workspace. Answer clearly and concisely."
	}
	return fmt.Sprintf(`You are a helpful assistant for a personal workspace. Answer using the workspace context below when it is relevant, and say so when the context does not contain the answer.

%s`, workspaceContext)
}

func clip(text string) string {
	if utf8.RuneCountInString(text) <= maxPromptRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxPromptRunes]) + "\n[... truncated]"
}
