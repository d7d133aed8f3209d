package frontmatterops

import "git.home.luguber.info/inful/hugoify/internal/frontmatter"

// Read splits a page into its front matter fields and body. A page without
// front matter yields empty fields and the whole input as body.
func Read(content []byte) (fields map[string]any, body []byte, had bool, err error) {
	raw, body, had, err := frontmatter.Split(content)
	if err != nil {
		return nil, nil, false, err
	}
	fields, err = frontmatter.ParseYAML(raw)
	if err != nil {
		return nil, nil, had, err
	}
	return fields, body, had, nil
}

// Write renders fields in page order followed by the body.
func Write(fields map[string]any, body []byte) ([]byte, error) {
	raw, err := frontmatter.SerializeYAML(fields, Order...)
	if err != nil {
		return nil, err
	}
	return frontmatter.Join(raw, body), nil
}
