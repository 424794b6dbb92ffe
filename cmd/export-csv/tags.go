package main

import (
	"encoding/json"
	"strings"
)

// joinTags turns the stored JSON array into the "|" separated form.
func joinTags(raw string) string {
	if raw == "" {
		return ""
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return ""
	}
	return strings.Join(tags, "|")
}
