package usecase

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const minLinkLength = 6

// firstLinkInBlob walks a free-form JSON links value in document order
// (object values in the order written, array items in order) and returns the
// first string that looks like a URL. The match is loose on purpose and can
// return strings that are not URLs. Invalid JSON yields nothing.
func firstLinkInBlob(blob string) (string, bool) {
	if !json.Valid([]byte(blob)) {
		return "", false
	}

	type frame struct {
		object    bool
		expectKey bool
	}
	var stack []frame

	dec := json.NewDecoder(strings.NewReader(blob))
	for {
		tok, err := dec.Token()
		if err != nil {
			// io.EOF once the value is exhausted.
			return "", false
		}

		isKey := false
		if n := len(stack); n > 0 && stack[n-1].object {
			isKey = stack[n-1].expectKey
			stack[n-1].expectKey = !stack[n-1].expectKey
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				stack = append(stack, frame{object: v == '{', expectKey: v == '{'})
			case '}', ']':
				stack = stack[:len(stack)-1]
			}
		case string:
			if !isKey && looksLikeLink(v) {
				return withScheme(v), true
			}
		}
	}
}

func looksLikeLink(s string) bool {
	return strings.Contains(s, ".") && utf8.RuneCountInString(s) >= minLinkLength
}

func withScheme(s string) string {
	if strings.HasPrefix(s, "http") {
		return s
	}
	return "https://" + s
}
