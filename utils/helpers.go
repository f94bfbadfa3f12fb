package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var notionIDPattern = regexp.MustCompile(`(?i)([0-9a-f]{8}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{12})`)

// ParseNotionID accepts a bare id (with or without dashes) or a Notion page
// link and returns the id in dashed form. When a link holds several ids, the
// last one wins: it is the page, earlier ones belong to the workspace path.
func ParseNotionID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", errors.New("empty notion id")
	}
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}

	matches := notionIDPattern.FindAllString(link, -1)
	if len(matches) == 0 {
		return "", errors.Errorf("no notion id found in %q", link)
	}

	id, err := uuid.Parse(matches[len(matches)-1])
	if err != nil {
		return "", errors.Wrapf(err, "invalid notion id in %q", link)
	}
	return id.String(), nil
}

// SplitList splits a comma separated form value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
