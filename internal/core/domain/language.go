package domain

// LanguageCode is a two-letter language tag from the closed set the service
// supports. Locale and voice lookups go through the tables below so an
// unsupported code degrades to English instead of failing silently mid-call.
type LanguageCode string

const (
	LangEnglish    LanguageCode = "en"
	LangHindi      LanguageCode = "hi"
	LangTamil      LanguageCode = "ta"
	LangBengali    LanguageCode = "bn"
	LangSpanish    LanguageCode = "es"
	LangFrench     LanguageCode = "fr"
	LangGerman     LanguageCode = "de"
	LangItalian    LanguageCode = "it"
	LangPortuguese LanguageCode = "pt"
	LangJapanese   LanguageCode = "ja"
	LangKorean     LanguageCode = "ko"
	LangChinese    LanguageCode = "zh"
)

type languageInfo struct {
	name   string
	locale string
	voice  string
}

var languages = map[LanguageCode]languageInfo{
	LangEnglish:    {name: "English", locale: "en-US", voice: "en-US-Neural2-A"},
	LangHindi:      {name: "Hindi", locale: "hi-IN", voice: "hi-IN-Neural2-A"},
	LangTamil:      {name: "Tamil", locale: "ta-IN", voice: "ta-IN-Neural2-A"},
	LangBengali:    {name: "Bengali", locale: "bn-IN", voice: "bn-IN-Neural2-A"},
	LangSpanish:    {name: "Spanish", locale: "es-ES", voice: "es-ES-Neural2-A"},
	LangFrench:     {name: "French", locale: "fr-FR", voice: "fr-FR-Neural2-A"},
	LangGerman:     {name: "German", locale: "de-DE", voice: "de-DE-Neural2-A"},
	LangItalian:    {name: "Italian", locale: "it-IT", voice: "it-IT-Neural2-A"},
	LangPortuguese: {name: "Portuguese", locale: "pt-PT", voice: "pt-PT-Neural2-A"},
	LangJapanese:   {name: "Japanese", locale: "ja-JP", voice: "ja-JP-Neural2-A"},
	LangKorean:     {name: "Korean", locale: "ko-KR", voice: "ko-KR-Neural2-A"},
	LangChinese:    {name: "Chinese", locale: "zh-CN", voice: "zh-CN-Neural2-A"},
}

func (l LanguageCode) Supported() bool {
	_, ok := languages[l]
	return ok
}

// Name returns the English display name, or the raw code when unknown.
func (l LanguageCode) Name() string {
	if info, ok := languages[l]; ok {
		return info.name
	}
	return string(l)
}

func (l LanguageCode) Locale() string {
	if info, ok := languages[l]; ok {
		return info.locale
	}
	return languages[LangEnglish].locale
}

func (l LanguageCode) Voice() string {
	if info, ok := languages[l]; ok {
		return info.voice
	}
	return languages[LangEnglish].voice
}
