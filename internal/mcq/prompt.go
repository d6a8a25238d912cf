package mcq

import (
	"fmt"
	"strings"
)

// systemPrompt sets the generation role. The formatting rules are spelled
// out because compliance is best-effort: the parser downstream still has
// to cope with fenced or wrapped output.
const systemPrompt = `You are a high-quality exam question generator for Spanish traffic law.`

const promptTemplate = `Rules:
- Generate up to %d distinct multiple-choice questions on varied topics from the provided context.
- Avoid generating questions that are very similar in theme.
- Provide 4 options labeled A, B, C, D.
- Only one correct answer from one of the options.
- Output MUST be valid JSON: a JSON array of question objects.
- Ignore any context that is not related to traffic law, for example a website address or a copyright claim.
- Each question MUST include keys:
  question, options, correct_answer, explanation, topic_name, source

Context:
%s`

// BuildPrompt renders the generation instruction for n questions grounded
// in contextText.
func BuildPrompt(contextText string, n int) string {
	return fmt.Sprintf(promptTemplate, n, strings.TrimSpace(contextText))
}
