package shell

import "fmt"

const (
	// MaxTokens is the most tokens kept from one line; the rest are dropped.
	MaxTokens = 50
	// MaxTokenLen is the longest token accepted, in bytes.
	MaxTokenLen = 255
)

// Tokenize splits line on spaces, tabs, carriage returns and newlines.
// Only the first MaxTokens tokens are returned.
func Tokenize(line string) ([]string, error) {
	var tokens []string
	start := -1

	flush := func(end int) error {
		if start < 0 {
			return nil
		}
		tok := line[start:end]
		start = -1
		if len(tok) > MaxTokenLen {
			return fmt.Errorf("%w: %d bytes, limit is %d", ErrTokenTooLong, len(tok), MaxTokenLen)
		}
		tokens = append(tokens, tok)
		return nil
	}

	for i := 0; i < len(line) && len(tokens) < MaxTokens; i++ {
		switch line[i] {
		case ' ', '\t', '\r', '\n':
			if err := flush(i); err != nil {
				return nil, err
			}
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if len(tokens) < MaxTokens {
		if err := flush(len(line)); err != nil {
			return nil, err
		}
	}
	return tokens, nil
}
