package pipeline

import (
	"fmt"
	"strings"
)

// WordWindowChunker creates a chunker that slides a fixed-size word
// window over the text. Consecutive windows share overlap words; the
// cursor always advances by at least one word so chunking terminates on
// any input.
func WordWindowChunker(size int, overlap int) ChunkFunc {
	return func(text string) ([]string, error) {
		if size <= 0 {
			return nil, fmt.Errorf("chunk size must be positive, got %d", size)
		}
		if overlap < 0 || overlap >= size {
			return nil, fmt.Errorf("overlap must be in [0, size), got %d", overlap)
		}

		words := strings.Fields(text)
		if len(words) == 0 {
			return []string{}, nil
		}

		step := size - overlap
		if step < 1 {
			step = 1
		}

		var chunks []string
		for i := 0; i < len(words); i += step {
			end := i + size
			if end > len(words) {
				end = len(words)
			}
			chunks = append(chunks, strings.Join(words[i:end], " "))
		}

		return chunks, nil
	}
}
