package observability

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// PromptLevel controls how much message content reaches spans and logs.
type PromptLevel string

const (
	PromptLevelNone   PromptLevel = "none"
	PromptLevelHashed PromptLevel = "hashed"
	PromptLevelFull   PromptLevel = "full"
)

const previewRunes = 120

var (
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern  = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	cardPattern   = regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)
	secretPattern = regexp.MustCompile(`\b(sk|pk|rk)-[A-Za-z0-9_-]{8,}\b`)
)

// PromptSanitizer renders message content for telemetry.
type PromptSanitizer struct {
	level PromptLevel
	salt  string
}

// NewPromptSanitizer returns a sanitizer. Unknown levels behave as PromptLevelNone.
func NewPromptSanitizer(level, salt string) *PromptSanitizer {
	l := PromptLevel(strings.ToLower(strings.TrimSpace(level)))
	switch l {
	case PromptLevelNone, PromptLevelHashed, PromptLevelFull:
	default:
		l = PromptLevelNone
	}
	return &PromptSanitizer{level: l, salt: salt}
}

func (s *PromptSanitizer) Level() PromptLevel {
	if s == nil {
		return PromptLevelNone
	}
	return s.level
}

// Preview returns a truncated, sanitized rendering of content. Empty means nothing should be recorded.
func (s *PromptSanitizer) Preview(content string) string {
	switch s.Level() {
	case PromptLevelFull:
		return truncate(content)
	case PromptLevelHashed:
		return truncate(s.maskPII(content))
	default:
		return ""
	}
}

func (s *PromptSanitizer) maskPII(input string) string {
	result := secretPattern.ReplaceAllString(input, "[SECRET:REDACTED]")
	result = cardPattern.ReplaceAllString(result, "[CC:REDACTED]")
	result = emailPattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[EMAIL:%s]", s.hash(match))
	})
	result = phonePattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[PHONE:%s]", s.hash(match))
	})
	return result
}

// hash returns the first 8 hex chars of a salted SHA-256.
func (s *PromptSanitizer) hash(data string) string {
	sum := sha256.Sum256([]byte(data + s.salt))
	return hex.EncodeToString(sum[:])[:8]
}

func truncate(content string) string {
	if utf8.RuneCountInString(content) <= previewRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewRunes]) + "…"
}
