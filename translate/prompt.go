package translate

import (
	"strings"

	"github.com/jannikbertram/Rire/langname"
	"github.com/jannikbertram/Rire/messages"
)

// systemPromptTemplate is the translation system prompt. {{targetLang}} is
// replaced with the resolved display name of the target language.
const systemPromptTemplate = `You are a professional translator specializing in software and product localization. Translate the user interface messages you are given from English into {{targetLang}}.

IMPORTANT TRANSLATION PRINCIPLES:
- Translate for NATURALNESS and FLUENCY in {{targetLang}}, not word-for-word
- Preserve the tone and formality level of the source text
- Keep brand names and proper nouns unchanged

TECHNICAL REQUIREMENTS:
- Preserve all placeholders exactly as-is (e.g. {name}, {{variable}}, %s)
- Preserve any HTML or markup tags exactly as they appear
- Translate the full content without adding or omitting anything
- Return ONLY a JSON object mapping each message key to its translated value, no explanations or markdown code blocks.`

// contextHeader labels the optional product context section of the system
// prompt. The section is omitted entirely when no context is configured.
const contextHeader = "PRODUCT CONTEXT:"

// BuildSystemPrompt composes the system prompt for a target language.
// A non-empty context is appended verbatim under a labeled section.
func BuildSystemPrompt(targetLang, context string) string {
	prompt := strings.ReplaceAll(systemPromptTemplate, "{{targetLang}}", langname.Resolve(targetLang))
	if context != "" {
		prompt += "\n\n" + contextHeader + "\n" + context
	}
	return prompt
}

// BuildTranslationPrompt composes the full per-batch prompt: the system
// prompt, the translation instruction, and the batch serialized as an
// indented JSON object in batch order. This serialization is the model's
// only view of which keys need translation.
func BuildTranslationPrompt(systemPrompt string, batch []messages.Entry) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nTranslate each of the following messages:\n\n")
	b.Write(messages.FromEntries(batch).Marshal())
	return b.String()
}
