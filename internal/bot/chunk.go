package bot

// maxMessageLen is the transport's practical message size. Longer
// responses are split into ordered chunks; only the last chunk carries
// interactive affordances.
const maxMessageLen = 4000

// chunkText splits s into rune-safe chunks of at most size characters.
// Concatenating the chunks reproduces s exactly.
func chunkText(s string, size int) []string {
	runes := []rune(s)
	if len(runes) <= size {
		return []string{s}
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
