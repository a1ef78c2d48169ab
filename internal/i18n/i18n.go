// Package i18n serves the embedded en/el message catalogues.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

const (
	LangEN = "en"
	LangEL = "el"

	DefaultLang = LangEN
)

var (
	once  sync.Once
	packs map[string]map[string]string

	supported = []language.Tag{language.English, language.Greek}
	matcher   = language.NewMatcher(supported)
)

func load() {
	packs = make(map[string]map[string]string)
	for _, lang := range []string{LangEN, LangEL} {
		data, err := locales.ReadFile("locales/" + lang + ".json")
		if err != nil {
			packs[lang] = map[string]string{}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			m = map[string]string{}
		}
		packs[lang] = m
	}
}

// T looks up key in lang, falls back to English and then to the key itself,
// and replaces every {name} placeholder found in params.
func T(lang, key string, params map[string]interface{}) string {
	once.Do(load)

	msg, ok := packs[lang][key]
	if !ok {
		msg, ok = packs[DefaultLang][key]
	}
	if !ok {
		return key
	}
	for name, val := range params {
		msg = strings.ReplaceAll(msg, "{"+name+"}", fmt.Sprint(val))
	}
	return msg
}

// Supported reports whether lang has a catalogue.
func Supported(lang string) bool {
	return lang == LangEN || lang == LangEL
}

// Negotiate picks the best supported language for an Accept-Language header.
func Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLang
	}
	base, _ := supported[idx].Base()
	return base.String()
}
