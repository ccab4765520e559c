package coordinator

// Language tags the detected input language. Memo preambles and fallback
// replies are rendered to match it.
type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

// DetectLanguage returns Chinese when the text contains any CJK ideograph.
func DetectLanguage(text string) Language {
	for _, r := range text {
		if r >= 0x4e00 && r <= 0x9fff {
			return Chinese
		}
	}
	return English
}
