package translation

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultGlossary maps common English document vocabulary to Spanish.
var DefaultGlossary = map[string]string{
	"annual":      "anual",
	"budget":      "presupuesto",
	"contract":    "contrato",
	"design":      "diseño",
	"document":    "documento",
	"employee":    "empleado",
	"engineering": "ingeniería",
	"finance":     "finanzas",
	"guide":       "guía",
	"handbook":    "manual",
	"invoice":     "factura",
	"meeting":     "reunión",
	"minutes":     "acta",
	"plan":        "plan",
	"policy":      "política",
	"project":     "proyecto",
	"quarterly":   "trimestral",
	"report":      "informe",
	"review":      "revisión",
	"sales":       "ventas",
	"security":    "seguridad",
	"summary":     "resumen",
	"title":       "título",
	"translated":  "traducido",
	"and":         "y",
	"of":          "de",
	"the":         "el",
	"for":         "para",
}

// GlossaryTranslator translates word by word from a fixed dictionary. Unknown
// words are kept. It needs no network and is deterministic.
type GlossaryTranslator struct {
	words map[string]string
}

func NewGlossaryTranslator(words map[string]string) *GlossaryTranslator {
	if words == nil {
		words = DefaultGlossary
	}
	return &GlossaryTranslator{words: words}
}

func (g *GlossaryTranslator) Translate(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ErrEmptyResult
	}
	for i, f := range fields {
		core := strings.TrimFunc(f, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		tr, ok := g.words[strings.ToLower(core)]
		if !ok || core == "" {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(core); unicode.IsUpper(r) {
			tr = capitalize(tr)
		}
		fields[i] = strings.Replace(f, core, tr, 1)
	}
	return strings.Join(fields, " "), nil
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
