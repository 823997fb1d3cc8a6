package retrieval

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

// countTokens reports the cl100k token length of the assembled context. The
// count is informational (the budget itself is enforced in characters), so
// when the encoding cannot be loaded we fall back to a rough estimate
// instead of failing the whole assembly.
func countTokens(text string) int {
	if text == "" {
		return 0
	}
	tkOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tk = enc
		}
	})
	if tk == nil {
		return len(text) / 4
	}
	return len(tk.Encode(text, nil, nil))
}
