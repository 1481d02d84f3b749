package rag

import "strings"

const (
	thinkStart = "<think>"
	thinkEnd   = "</think>"
)

// StripThinking separates a model's inline reasoning segment from its
// answer. The first <think>...</think> pair is removed from the answer
// and returned separately. If the end marker never appears, the whole
// output is treated as the answer; a model that forgot to close its
// reasoning should not swallow the reply.
func StripThinking(output string) (answer, thinking string) {
	start := strings.Index(output, thinkStart)
	if start == -1 {
		return strings.TrimSpace(output), ""
	}

	rest := output[start+len(thinkStart):]
	end := strings.Index(rest, thinkEnd)
	if end == -1 {
		return strings.TrimSpace(output), ""
	}

	thinking = strings.TrimSpace(rest[:end])
	answer = output[:start] + rest[end+len(thinkEnd):]
	return strings.TrimSpace(answer), thinking
}
