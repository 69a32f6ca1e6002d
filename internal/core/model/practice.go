package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Built-in practice types.
const (
	PracticeShamatha   = "shamatha"
	PracticeVipashyana = "vipashyana"
	PracticeMahamudra  = "mahamudra"
	PracticeDzogchen   = "dzogchen"
	PracticeOther      = "other"
)

// BuiltInPracticeTypes lists the built-in types in display order.
var BuiltInPracticeTypes = []string{
	PracticeShamatha,
	PracticeVipashyana,
	PracticeMahamudra,
	PracticeDzogchen,
	PracticeOther,
}

var practiceLabels = map[string]string{
	PracticeShamatha:   "Shamatha (Calm Abiding)",
	PracticeVipashyana: "Vipashyana (Insight)",
	PracticeMahamudra:  "Mahamudra",
	PracticeDzogchen:   "Dzogchen",
	PracticeOther:      "Other",
}

var practiceDescriptions = map[string]string{
	PracticeShamatha:   "Focusing on the breath to settle the mind",
	PracticeVipashyana: "Investigating the nature of experience",
	PracticeMahamudra:  "Resting in the natural state of mind",
	PracticeDzogchen:   "Recognizing and resting in pure awareness",
	PracticeOther:      "Any other meditation practice",
}

// IsBuiltInPractice reports whether practiceType is one of the built-ins.
func IsBuiltInPractice(practiceType string) bool {
	_, ok := practiceLabels[practiceType]
	return ok
}

// PracticeLabel returns a display label for a built-in or custom type.
func PracticeLabel(practiceType string, custom []CustomPracticeType) string {
	if label, ok := practiceLabels[practiceType]; ok {
		return label
	}
	if match, ok := findCustom(practiceType, custom); ok {
		return match.Name
	}
	return capitalize(practiceType)
}

// PracticeShortName drops the parenthesised gloss from built-in labels.
func PracticeShortName(practiceType string, custom []CustomPracticeType) string {
	label := PracticeLabel(practiceType, custom)
	if !IsBuiltInPractice(practiceType) {
		return label
	}
	if index := strings.Index(label, " ("); index >= 0 {
		return label[:index]
	}
	return label
}

// PracticeDescription returns the description for a type, or "".
func PracticeDescription(practiceType string, custom []CustomPracticeType) string {
	if description, ok := practiceDescriptions[practiceType]; ok {
		return description
	}
	if match, ok := findCustom(practiceType, custom); ok {
		return match.Description
	}
	return ""
}

// PracticeTypes returns built-in types followed by custom type keys.
func PracticeTypes(custom []CustomPracticeType) []string {
	types := append([]string(nil), BuiltInPracticeTypes...)
	for _, item := range custom {
		key := strings.ToLower(strings.TrimSpace(item.Name))
		if key == "" || IsBuiltInPractice(key) {
			continue
		}
		types = append(types, key)
	}
	return types
}

func findCustom(practiceType string, custom []CustomPracticeType) (CustomPracticeType, bool) {
	for _, item := range custom {
		if strings.EqualFold(item.Name, practiceType) {
			return item, true
		}
	}
	return CustomPracticeType{}, false
}

func capitalize(value string) string {
	if value == "" {
		return value
	}
	first, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToUpper(first)) + value[size:]
}
