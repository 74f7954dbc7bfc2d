package extraction

import (
	"strings"

	"github.com/agenthands/ordex/internal/config"
)

const textPlaceholder = "{texto}"

const defaultSystemPrompt = "Você extrai campos e responde somente em JSON válido."

const defaultUserPrompt = `Você é um extrator. A partir do texto abaixo de uma OS, retorne APENAS JSON:
{
  "os_num": string|null,
  "data": string|null,
  "cnpj": string|null,
  "valor_total": string|null,
  "solicitante": string|null,
  "descricao": string|null
}
Sem explicações. Use null quando não souber.

Texto:
<<<
{texto}
>>>`

// DefaultPrompts returns the built-in instruction pair.
func DefaultPrompts() config.GenerativePrompts {
	return config.GenerativePrompts{
		System: defaultSystemPrompt,
		User:   defaultUserPrompt,
	}
}

func withDefaults(p config.GenerativePrompts) config.GenerativePrompts {
	if strings.TrimSpace(p.System) == "" {
		p.System = defaultSystemPrompt
	}
	if strings.TrimSpace(p.User) == "" {
		p.User = defaultUserPrompt
	}
	return p
}

// Truncate keeps the first max characters (runes) of text.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i]
		}
		n++
	}
	return text
}

func buildUserPrompt(tmpl, text string) string {
	return strings.ReplaceAll(tmpl, textPlaceholder, text)
}
