package indexer

import "strings"

var textNormalizer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\ufeff", "",
	"\x00", "",
)

// Preprocess normalizes extracted text before chunking: unifies line endings and strips byte
// order marks and NUL bytes. Chunk offsets refer to the preprocessed text, which is what the
// document stores as its raw text.
func Preprocess(text string) string {
	return textNormalizer.Replace(text)
}
