// Package progress extracts machine-readable progress blocks that the
// conversation model embeds in its replies as fenced JSON, and derives the
// step-progress view shown alongside the conversational text.
package progress

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// Block is one fenced JSON region found in a reply: the span it occupies in
// the original text, the raw inner payload, and the parsed document.
type Block struct {
	Start int
	End   int
	Raw   string
	Data  map[string]any
}

// Extract returns every well-formed fenced JSON block in text, in document
// order. Blocks whose payload fails to parse are logged and dropped; the
// surrounding text is left untouched for such blocks.
func Extract(text string) []Block {
	matches := fencedJSON.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return nil
	}

	blocks := make([]Block, 0, len(matches))
	for _, m := range matches {
		raw := text[m[2]:m[3]]

		var data map[string]any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			log.Printf("Progress: skipping malformed block: %v", err)
			continue
		}

		blocks = append(blocks, Block{
			Start: m[0],
			End:   m[1],
			Raw:   raw,
			Data:  data,
		})
	}
	return blocks
}

// CleanText removes the given blocks' spans from text, working from the last
// block to the first so earlier offsets stay valid, and trims the result.
func CleanText(text string, blocks []Block) string {
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		if b.Start < 0 || b.End > len(text) || b.Start > b.End {
			continue
		}
		text = text[:b.Start] + text[b.End:]
	}
	return strings.TrimSpace(text)
}

// Clean is the common path: extract, strip, and return both the display text
// and the structured blocks.
func Clean(text string) (string, []Block) {
	blocks := Extract(text)
	return CleanText(text, blocks), blocks
}
