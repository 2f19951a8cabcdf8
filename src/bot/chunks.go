package bot

import "strings"

// maxMessageLen is Discord's hard cap on message content.
const maxMessageLen = 2000

// splitMessage breaks content into sendable chunks, preferring blank-line
// boundaries, then line boundaries, then a hard cut.
func splitMessage(content string) []string {
	if len([]rune(content)) <= maxMessageLen {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder
	for _, block := range strings.Split(content, "\n\n") {
		for _, piece := range splitLong(block) {
			candidate := piece
			if current.Len() > 0 {
				candidate = current.String() + "\n\n" + piece
			}
			if len([]rune(candidate)) > maxMessageLen {
				if current.Len() > 0 {
					chunks = append(chunks, current.String())
					current.Reset()
				}
				current.WriteString(piece)
				continue
			}
			current.Reset()
			current.WriteString(candidate)
		}
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitLong cuts a single block that exceeds the cap, first by lines, then by
// rune count for pathological single lines.
func splitLong(block string) []string {
	if len([]rune(block)) <= maxMessageLen {
		return []string{block}
	}

	var out []string
	var current strings.Builder
	for _, line := range strings.Split(block, "\n") {
		for len([]rune(line)) > maxMessageLen {
			runes := []rune(line)
			out = append(out, string(runes[:maxMessageLen]))
			line = string(runes[maxMessageLen:])
		}
		candidate := line
		if current.Len() > 0 {
			candidate = current.String() + "\n" + line
		}
		if len([]rune(candidate)) > maxMessageLen {
			out = append(out, current.String())
			current.Reset()
			current.WriteString(line)
			continue
		}
		current.Reset()
		current.WriteString(candidate)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}
