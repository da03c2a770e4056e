// Package langname maps language codes to English display names for
// prompt construction and CLI output.
package langname

import "strings"

// registry contains English display names for common language codes.
// Locale variants are resolved in Resolve() via normalization and base fallback.
var registry = map[string]string{
	"ar":    "Arabic",
	"bg":    "Bulgarian",
	"bn":    "Bengali",
	"ca":    "Catalan",
	"cs":    "Czech",
	"da":    "Danish",
	"de":    "German",
	"el":    "Greek",
	"en":    "English",
	"en-GB": "English (UK)",
	"en-US": "English (US)",
	"es":    "Spanish",
	"et":    "Estonian",
	"fa":    "Persian",
	"fi":    "Finnish",
	"fr":    "French",
	"he":    "Hebrew",
	"hi":    "Hindi",
	"hr":    "Croatian",
	"hu":    "Hungarian",
	"id":    "Indonesian",
	"it":    "Italian",
	"ja":    "Japanese",
	"ko":    "Korean",
	"lt":    "Lithuanian",
	"lv":    "Latvian",
	"ms":    "Malay",
	"nb":    "Norwegian Bokmål",
	"nl":    "Dutch",
	"no":    "Norwegian",
	"pl":    "Polish",
	"pt":    "Portuguese",
	"pt-BR": "Portuguese (Brazil)",
	"pt-PT": "Portuguese (Portugal)",
	"ro":    "Romanian",
	"ru":    "Russian",
	"sk":    "Slovak",
	"sl":    "Slovenian",
	"sr":    "Serbian",
	"sv":    "Swedish",
	"sw":    "Swahili",
	"th":    "Thai",
	"tr":    "Turkish",
	"uk":    "Ukrainian",
	"ur":    "Urdu",
	"vi":    "Vietnamese",
	"zh":    "Chinese",
	"zh-CN": "Chinese (Simplified)",
	"zh-TW": "Chinese (Traditional)",
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns the English display name for a language code, supporting
// variants like pt_BR, pt-BR, and base-language fallbacks. Unknown codes are
// returned unchanged.
func Resolve(lang string) string {
	if name, ok := registry[lang]; ok {
		return name
	}
	normalized := canonicalize(lang)
	if name, ok := registry[normalized]; ok {
		return name
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if name, ok := registry[parts[0]]; ok {
			return name
		}
	}
	return lang
}
