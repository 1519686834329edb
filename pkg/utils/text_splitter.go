package utils

import "strings"

// SplitText splits document text into chunks of approximately
// 'chunkSize' characters with an 'overlap' preserving context at the
// boundaries. Chunks are what get embedded; the overlap keeps a
// sentence cut at a boundary retrievable from either side.
func SplitText(text string, chunkSize int, overlap int) []string {
	if chunkSize < 1 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunk := strings.TrimSpace(string(runes[i:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == totalLen {
			break
		}
	}

	return chunks
}
