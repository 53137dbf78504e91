// Package i18n localizes checker finding messages.
package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for finding codes.
// data provides optional values to embed in the message (for example,
// "paths" or "detail").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dict = map[string]map[string]string{
	"en": {
		"ok":            "OK",
		"duplicate_key": "Duplicate keys found: {paths}",
		"parse_error":   "Failed to parse document: {detail}",
		"truncated":     "Document exceeds configured limits: {detail}",
		"read_error":    "Failed to read document: {detail}",
	},
	"ja": {
		"ok":            "OK",
		"duplicate_key": "キーが重複しています: {paths}",
		"parse_error":   "ドキュメントの解析に失敗しました: {detail}",
		"truncated":     "設定された上限を超えました: {detail}",
		"read_error":    "ドキュメントを読み込めませんでした: {detail}",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dict[t.lang][code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
