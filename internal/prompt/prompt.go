// Package prompt parses structured prompt documents. A prompt file is plain
// Markdown organized by H2 headings — "## System Message", "## User Message",
// "## Assistant" — each section becoming one role-tagged message. Template
// variables use the {{name}} form.
package prompt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrNoMessages is returned when a document contains no recognized message
// sections.
var ErrNoMessages = errors.New("no message sections found; use ## System Message, ## User Message or ## Assistant headings")

// Role identifies the speaker of a message section.
type Role string

const (
	System    Role = "system"
	User      Role = "user"
	Assistant Role = "assistant"
)

// Message is one role-tagged section of a prompt document.
type Message struct {
	Role    Role
	Content string
}

var variableRe = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// Parse splits a prompt document into messages. H2 headings whose text
// mentions system/user/assistant open a section; the raw source up to the
// next H2 is the section content. Headings with unrecognized text are
// ignored along with their content.
func Parse(content string) ([]Message, error) {
	src := []byte(content)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	type section struct {
		role  Role
		known bool
		start int // byte offset where the section body begins
	}
	var sections []section

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 2 || h.Lines().Len() == 0 {
			continue
		}
		role, known := roleForHeading(nodeText(h, src))
		sections = append(sections, section{
			role:  role,
			known: known,
			start: h.Lines().At(h.Lines().Len() - 1).Stop,
		})
	}

	var messages []Message
	for i, s := range sections {
		if !s.known {
			continue
		}
		end := len(src)
		if i+1 < len(sections) {
			end = headingLineStart(src, sections[i+1].start)
		}
		body := strings.TrimSpace(string(src[s.start:end]))
		if body == "" {
			continue
		}
		messages = append(messages, Message{Role: s.role, Content: body})
	}

	if len(messages) == 0 {
		return nil, ErrNoMessages
	}
	return messages, nil
}

// Variables returns the distinct {{variable}} names referenced by the
// document's messages, in first-appearance order.
func Variables(content string) ([]string, error) {
	messages, err := Parse(content)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, m := range messages {
		for _, match := range variableRe.FindAllStringSubmatch(m.Content, -1) {
			if !seen[match[1]] {
				seen[match[1]] = true
				names = append(names, match[1])
			}
		}
	}
	return names, nil
}

// Template is the starting content for a newly created prompt file.
func Template(name string) string {
	title := strings.TrimSuffix(name, ".md")
	return fmt.Sprintf(`# %s

## System Message

You are a helpful assistant.

## User Message

Your prompt content here.
Use {{variable_name}} for variables.
`, title)
}

// roleForHeading maps heading text onto a message role.
func roleForHeading(heading string) (Role, bool) {
	lower := strings.ToLower(heading)
	switch {
	case strings.Contains(lower, "system"):
		return System, true
	case strings.Contains(lower, "user"):
		return User, true
	case strings.Contains(lower, "assistant"):
		return Assistant, true
	}
	return "", false
}

// headingLineStart walks back from a heading's content offset to the start of
// its line, so the previous section's body does not swallow the "## " marker.
func headingLineStart(src []byte, stop int) int {
	i := stop
	for i > 0 && src[i-1] != '\n' {
		i--
	}
	return i
}

// nodeText collects the plain text of a node's inline children.
func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
