package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Reply is one element of the service's JSON answer.
type Reply struct {
	Title   string `json:"title"`
	Level   int    `json:"level"`
	PageNum int    `json:"page_num"`
}

// ParseReply accepts a bare or fenced JSON array, or an array embedded in prose.
func ParseReply(s string) ([]Reply, error) {
	s = stripCodeFences(s)
	var out []Reply
	err := json.Unmarshal([]byte(s), &out)
	if err == nil {
		if out == nil {
			return nil, errors.New("reply array is null")
		}
		return out, nil
	}
	arr := findFirstJSONArray(s)
	if arr == "" {
		return nil, fmt.Errorf("no JSON array in reply: %w", err)
	}
	if err2 := json.Unmarshal([]byte(arr), &out); err2 != nil {
		return nil, fmt.Errorf("parse reply: %w (original error: %v)", err2, err)
	}
	if out == nil {
		return nil, errors.New("reply array is null")
	}
	return out, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// findFirstJSONArray returns the first balanced [...] span, skipping brackets inside strings.
func findFirstJSONArray(s string) string {
	start, depth := -1, 0
	inString, escaped := false, false
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if start != -1 {
				inString = true
			}
		case '[':
			if start == -1 {
				start = i
			}
			depth++
		case ']':
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
