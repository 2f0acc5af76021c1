package knowledge

import "strings"

// maxChunkLen bounds a single passage so embeddings stay focused.
const maxChunkLen = 2000

// Section is a heading-delimited slice of a markdown document.
type Section struct {
	Heading string
	Text    string
}

// SplitMarkdown splits markdown content into sections at headings.
// Content before the first heading becomes a section with an empty
// heading. Oversized sections are further split at paragraph breaks.
func SplitMarkdown(content string) []Section {
	var sections []Section

	var heading string
	var body []string
	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text != "" {
			for _, part := range splitLong(text) {
				sections = append(sections, Section{Heading: heading, Text: part})
			}
		}
		body = nil
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") {
			flush()
			heading = strings.TrimSpace(strings.TrimLeft(line, "#"))
			continue
		}
		body = append(body, line)
	}
	flush()

	return sections
}

// splitLong breaks text exceeding maxChunkLen at paragraph boundaries,
// falling back to a hard cut for a single oversized paragraph.
func splitLong(text string) []string {
	if len(text) <= maxChunkLen {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		if current.Len() > 0 && current.Len()+len(para)+2 > maxChunkLen {
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
		}
		for len(para) > maxChunkLen {
			parts = append(parts, para[:maxChunkLen])
			para = para[maxChunkLen:]
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		parts = append(parts, s)
	}
	return parts
}
