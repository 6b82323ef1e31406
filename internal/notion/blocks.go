package notion

import "strings"

// MaxRichTextLength is Notion's per-block rich text limit. Paragraphs longer
// than this are clamped independently.
const MaxRichTextLength = 2000

// Block is one Notion block object in wire form.
type Block map[string]any

func richText(content string) []map[string]any {
	return []map[string]any{
		{"type": "text", "text": map[string]any{"content": content}},
	}
}

func richTextLink(content, url string) []map[string]any {
	return []map[string]any{
		{"type": "text", "text": map[string]any{
			"content": content,
			"link":    map[string]any{"url": url},
		}},
	}
}

// Heading builds a level-2 heading block.
func Heading(text string) Block {
	return Block{
		"object":    "block",
		"type":      "heading_2",
		"heading_2": map[string]any{"rich_text": richText(text)},
	}
}

// Paragraph builds a paragraph block, clamped to the rich text limit.
func Paragraph(text string) Block {
	return Block{
		"object":    "block",
		"type":      "paragraph",
		"paragraph": map[string]any{"rich_text": richText(clamp(text))},
	}
}

// Divider builds a divider block.
func Divider() Block {
	return Block{
		"object":  "block",
		"type":    "divider",
		"divider": map[string]any{},
	}
}

// TableOfContents builds a table_of_contents block.
func TableOfContents() Block {
	return Block{
		"object":            "block",
		"type":              "table_of_contents",
		"table_of_contents": map[string]any{},
	}
}

// SourceLink builds a compact paragraph linking back to the captured page.
func SourceLink(url string) Block {
	return Block{
		"object":    "block",
		"type":      "paragraph",
		"paragraph": map[string]any{"rich_text": richTextLink("Source", url)},
	}
}

// Toggle builds a collapsed block with the given children.
func Toggle(title string, children []Block) Block {
	return Block{
		"object": "block",
		"type":   "toggle",
		"toggle": map[string]any{
			"rich_text": richText(title),
			"children":  children,
		},
	}
}

// BulletedItem builds one bulleted list item.
func BulletedItem(text string) Block {
	return Block{
		"object":             "block",
		"type":               "bulleted_list_item",
		"bulleted_list_item": map[string]any{"rich_text": richText(clamp(text))},
	}
}

// Section builds the heading plus paragraph blocks for one capture. The text
// is split on blank-line boundaries and each paragraph is clamped
// independently.
func Section(title, text string) []Block {
	blocks := []Block{Heading(title)}
	for _, para := range SplitParagraphs(text) {
		blocks = append(blocks, Paragraph(para))
	}
	return blocks
}

// SplitParagraphs splits text on blank-line boundaries, dropping empty
// segments.
func SplitParagraphs(text string) []string {
	var paras []string
	for _, chunk := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			paras = append(paras, chunk)
		}
	}
	return paras
}

func clamp(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxRichTextLength {
		return text
	}
	return string(runes[:MaxRichTextLength])
}
