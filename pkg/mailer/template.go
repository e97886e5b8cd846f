package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var frontMatterDelim = []byte("---")

// splitFrontMatter separates optional YAML front matter from the markdown
// body. Templates without a leading "---" return empty metadata.
func splitFrontMatter(content []byte) (map[string]any, []byte, error) {
	if !bytes.HasPrefix(content, frontMatterDelim) {
		return map[string]any{}, content, nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(content, frontMatterDelim), "\r\n")
	end := bytes.Index(rest, frontMatterDelim)
	if end == -1 {
		return nil, nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontMatter)
	}

	meta := map[string]any{}
	if head := bytes.TrimSpace(rest[:end]); len(head) > 0 {
		if err := yaml.Unmarshal(head, &meta); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
		}
	}

	body := rest[end+len(frontMatterDelim):]
	// Drop the single newline that follows the closing delimiter.
	body = bytes.TrimPrefix(body, []byte("\r\n"))
	if len(body) > 0 && body[0] == '\n' {
		body = body[1:]
	}
	return meta, body, nil
}
