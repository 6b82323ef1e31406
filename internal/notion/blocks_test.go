package notion

import (
	"reflect"
	"strings"
	"testing"
)

func blockText(b Block, blockType string) string {
	inner, ok := b[blockType].(map[string]any)
	if !ok {
		return ""
	}
	richTexts, ok := inner["rich_text"].([]map[string]any)
	if !ok || len(richTexts) == 0 {
		return ""
	}
	text, ok := richTexts[0]["text"].(map[string]any)
	if !ok {
		return ""
	}
	content, _ := text["content"].(string)
	return content
}

func TestBlockShapes(t *testing.T) {
	tests := []struct {
		name      string
		block     Block
		blockType string
		wantText  string
	}{
		{"heading", Heading("Title"), "heading_2", "Title"},
		{"paragraph", Paragraph("body"), "paragraph", "body"},
		{"bulleted", BulletedItem("item"), "bulleted_list_item", "item"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.block["object"] != "block" {
				t.Errorf("object = %v, want block", tt.block["object"])
			}
			if tt.block["type"] != tt.blockType {
				t.Errorf("type = %v, want %s", tt.block["type"], tt.blockType)
			}
			if got := blockText(tt.block, tt.blockType); got != tt.wantText {
				t.Errorf("text = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestEmptyBlocks(t *testing.T) {
	for _, tt := range []struct {
		block     Block
		blockType string
	}{
		{Divider(), "divider"},
		{TableOfContents(), "table_of_contents"},
	} {
		if tt.block["type"] != tt.blockType {
			t.Errorf("type = %v, want %s", tt.block["type"], tt.blockType)
		}
	}
}

func TestSourceLink(t *testing.T) {
	b := SourceLink("https://example.com/article")
	inner := b["paragraph"].(map[string]any)
	richTexts := inner["rich_text"].([]map[string]any)
	text := richTexts[0]["text"].(map[string]any)
	link := text["link"].(map[string]any)
	if link["url"] != "https://example.com/article" {
		t.Errorf("link url = %v", link["url"])
	}
	if text["content"] != "Source" {
		t.Errorf("link text = %v, want Source", text["content"])
	}
}

func TestToggleNestsChildren(t *testing.T) {
	children := []Block{BulletedItem("a"), BulletedItem("b")}
	b := Toggle("Connected sections", children)
	inner := b["toggle"].(map[string]any)
	got, ok := inner["children"].([]Block)
	if !ok || !reflect.DeepEqual(got, children) {
		t.Errorf("toggle children = %v, want %v", inner["children"], children)
	}
	if blockText(b, "toggle") != "Connected sections" {
		t.Errorf("toggle title = %q", blockText(b, "toggle"))
	}
}

func TestSection(t *testing.T) {
	blocks := Section("My Title", "para one\n\npara two")
	if len(blocks) != 3 {
		t.Fatalf("Section() returned %d blocks, want 3", len(blocks))
	}
	if blocks[0]["type"] != "heading_2" || blockText(blocks[0], "heading_2") != "My Title" {
		t.Error("Section() first block is not the heading")
	}
	if blockText(blocks[1], "paragraph") != "para one" || blockText(blocks[2], "paragraph") != "para two" {
		t.Error("Section() paragraphs out of order")
	}
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "just one paragraph", []string{"just one paragraph"}},
		{"two", "first\n\nsecond", []string{"first", "second"}},
		{"crlf", "first\r\n\r\nsecond", []string{"first", "second"}},
		{"extra_blank_lines", "first\n\n\n\nsecond", []string{"first", "second"}},
		{"trims_whitespace", "  first  \n\n  second  ", []string{"first", "second"}},
		{"empty", "", nil},
		{"only_whitespace", "  \n\n  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitParagraphs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitParagraphs(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParagraphClampsLongText(t *testing.T) {
	long := strings.Repeat("a", MaxRichTextLength+100)
	b := Paragraph(long)
	if got := len([]rune(blockText(b, "paragraph"))); got != MaxRichTextLength {
		t.Errorf("paragraph text length = %d, want %d", got, MaxRichTextLength)
	}
}
