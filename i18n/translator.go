package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes and the engine's
// own UI strings.
// data provides optional metadata to embed in the message (for example,
// "type" or "action"); placeholders are written {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"unsupported_type":     "unsupported field type {type}",
		"duplicate_name":       "field name {name} is already used in this object",
		"missing_name":         "{type} requires a name",
		"invalid_value":        "invalid value",
		"disabled":             "field is disabled",
		"not_editable":         "element does not accept values",
		"unknown_action":       "unknown action {action}",
		"not_found":            "no element at {path}",
		"selector_unavailable": "selector support is unavailable",
		"parse_error":          "parse error",

		"ui.add":      "Add",
		"ui.remove":   "Remove",
		"ui.expand":   "Expand",
		"ui.collapse": "Collapse",
		"ui.enabled":  "Enabled",
		"ui.item":     "Item {index}",
	},
	"ja": {
		"unsupported_type":     "未対応のフィールド型です: {type}",
		"duplicate_name":       "フィールド名 {name} はこのオブジェクトで既に使われています",
		"missing_name":         "{type} には名前が必要です",
		"invalid_value":        "値が不正です",
		"disabled":             "フィールドは無効化されています",
		"not_editable":         "この要素は値を受け付けません",
		"unknown_action":       "未知の操作です: {action}",
		"not_found":            "{path} に要素がありません",
		"selector_unavailable": "セレクタが利用できません",
		"parse_error":          "解析エラー",

		"ui.add":      "追加",
		"ui.remove":   "削除",
		"ui.expand":   "展開",
		"ui.collapse": "折りたたむ",
		"ui.enabled":  "有効",
		"ui.item":     "項目 {index}",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict, ok := dictionaries[t.lang]
	if !ok {
		dict = dictionaries["en"]
	}
	msg, ok := dict[code]
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
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
