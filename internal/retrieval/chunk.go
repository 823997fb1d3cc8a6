package retrieval

import (
	"strings"
	"unicode"
)

// sentenceEnders covers Latin and CJK terminators.
var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true, '．': true, '…': true,
}

// ChunkText splits text into pieces of at most budget characters. It is a
// pure function of its input: paragraphs are packed greedily, a paragraph
// too large for the budget is split on sentence boundaries, and a sentence
// too large is split on word boundaries. Words are never split; a single
// word longer than the budget becomes its own oversized chunk rather than
// being cut mid-word.
func ChunkText(text string, budget int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if budget <= 0 || len(text) <= budget {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, para := range splitParagraphs(text) {
		if len(para) > budget {
			flush()
			chunks = append(chunks, splitOversized(para, budget)...)
			continue
		}
		if current.Len() > 0 && current.Len()+2+len(para) > budget {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()
	return chunks
}

// splitParagraphs breaks on blank lines and collapses soft wraps inside a
// paragraph into spaces.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitOversized(para string, budget int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, sentence := range splitSentences(para) {
		if len(sentence) > budget {
			flush()
			chunks = append(chunks, splitWords(sentence, budget)...)
			continue
		}
		if current.Len() > 0 && current.Len()+1+len(sentence) > budget {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	flush()
	return chunks
}

func splitSentences(para string) []string {
	var sentences []string
	var current strings.Builder
	runes := []rune(para)

	for i, r := range runes {
		current.WriteRune(r)
		if sentenceEnders[r] && (i+1 >= len(runes) || unicode.IsSpace(runes[i+1])) {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	if len(sentences) == 0 {
		return []string{para}
	}
	return sentences
}

func splitWords(sentence string, budget int) []string {
	var chunks []string
	var current strings.Builder

	for _, word := range strings.Fields(sentence) {
		if current.Len() > 0 && current.Len()+1+len(word) > budget {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
