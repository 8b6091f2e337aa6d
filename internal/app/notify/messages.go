package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultFailureKey = "Request failed"

// Chinese comes first: it is the fallback when nothing else matches.
var supported = []language.Tag{language.Chinese, language.English}

var matcher = language.NewMatcher(supported)

func init() {
	_ = message.SetString(language.Chinese, defaultFailureKey, "请求失败")
	_ = message.SetString(language.English, defaultFailureKey, "Request failed")
}

// MatchLanguage picks the supported language closest to an Accept-Language
// header value.
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// DefaultMessage is shown when a failed request carries no message of its own.
func DefaultMessage(tag language.Tag) string {
	return message.NewPrinter(tag).Sprintf(defaultFailureKey)
}
