package disease

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	separatorRun = regexp.MustCompile(`[_\s-]+`)

	diseaseSuffixes = []string{"_disease", "_spot", "_blight", "_rot", "_wilt"}
	healthyMarkers  = []string{"healthy", "sehat", "normal"}
)

// Normalize lowercases a tag and folds separator runs into a single underscore.
func Normalize(tag string) string {
	s := strings.ToLower(strings.TrimSpace(tag))
	s = separatorRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// IsHealthyTag reports whether a normalized tag names a healthy plant.
func IsHealthyTag(normalized string) bool {
	for _, m := range healthyMarkers {
		if strings.Contains(normalized, m) {
			return true
		}
	}
	return false
}

// Resolve maps a raw classifier tag onto a knowledge base key. Tags that match
// nothing come back normalized; Lookup will report them as absent.
func (kb *KnowledgeBase) Resolve(rawTag string) string {
	tag := Normalize(rawTag)
	if tag == "" {
		return UnknownKey
	}

	if _, ok := kb.entries[tag]; ok {
		return tag
	}

	for _, suffix := range diseaseSuffixes {
		if stem, found := strings.CutSuffix(tag, suffix); found {
			if _, ok := kb.entries[stem]; ok {
				return stem
			}
		}
	}

	if IsHealthyTag(tag) {
		if _, ok := kb.entries[HealthyKey]; ok {
			return HealthyKey
		}
	}

	for _, key := range kb.byLength {
		if strings.Contains(tag, key) || strings.Contains(key, tag) {
			return key
		}
	}

	return tag
}

// Describe resolves a tag and returns its entry, synthesizing a minimal one
// when the tag is not in the table.
func (kb *KnowledgeBase) Describe(rawTag string) Entry {
	key := kb.Resolve(rawTag)
	if e, ok := kb.Lookup(key); ok {
		return e
	}

	return Entry{
		Key:        key,
		Name:       HumanizeName(rawTag),
		IsHealthy:  IsHealthyTag(key),
		Severity:   SeverityUnknown,
		Symptoms:   []string{},
		Treatments: []Treatment{},
		Prevention: []string{},
	}
}

func Resolve(rawTag string) string {
	return defaultKB.Resolve(rawTag)
}

func Describe(rawTag string) Entry {
	return defaultKB.Describe(rawTag)
}

// HumanizeName turns "brown_spot" into "Brown Spot".
func HumanizeName(tag string) string {
	words := strings.FieldsFunc(tag, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return "Tidak Diketahui"
	}

	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
