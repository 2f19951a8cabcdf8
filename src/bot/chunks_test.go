package bot

import (
	"strings"
	"testing"
)

func TestSplitMessageShort(t *testing.T) {
	chunks := splitMessage("hello")
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestSplitMessageByLines(t *testing.T) {
	line := strings.Repeat("x", 600)
	content := strings.Join([]string{line, line, line, line, line}, "\n")

	chunks := splitMessage(content)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > maxMessageLen {
			t.Errorf("chunk %d exceeds cap: %d runes", i, len([]rune(c)))
		}
	}
	if strings.Join(chunks, "\n") != content {
		t.Error("chunks should reassemble to the original content")
	}
}

func TestSplitMessageHardCut(t *testing.T) {
	content := strings.Repeat("y", 4500)
	chunks := splitMessage(content)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	total := 0
	for _, c := range chunks {
		if len([]rune(c)) > maxMessageLen {
			t.Errorf("chunk exceeds cap: %d", len([]rune(c)))
		}
		total += len([]rune(c))
	}
	if total != 4500 {
		t.Errorf("total runes = %d, want 4500", total)
	}
}
