// File: internal/usecase/response_formatter.go
package usecase

import (
	"regexp"
	"strings"

	"telegram-ai-relay/internal/domain"
)

// MaxChunkRunes is the longest text sent in one Telegram message.
const MaxChunkRunes = 4000

var tagPattern = regexp.MustCompile(`<.*?>`)

// CleanCompletion removes every <...> tag and trims surrounding whitespace.
func CleanCompletion(raw string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(raw, ""))
}

// FormattedReply is what the pipeline sends (Chunks) and what it remembers (Text).
type FormattedReply struct {
	Text   string
	Chunks []string
}

type ResponseFormatter struct {
	header string
	limit  int
}

// NewResponseFormatter prefixes the first chunk with header. limit <= 0 means MaxChunkRunes.
func NewResponseFormatter(header string, limit int) *ResponseFormatter {
	if limit <= 0 {
		limit = MaxChunkRunes
	}
	return &ResponseFormatter{header: header, limit: limit}
}

// Format cleans raw and splits it into positional chunks of at most limit runes.
// The header is attached to the first chunk only and does not count towards the limit.
func (f *ResponseFormatter) Format(raw string) (FormattedReply, error) {
	text := CleanCompletion(raw)
	if text == "" {
		return FormattedReply{}, domain.ErrEmptyCompletion
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+f.limit-1)/f.limit)
	for start := 0; start < len(runes); start += f.limit {
		end := start + f.limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	chunks[0] = f.header + chunks[0]
	return FormattedReply{Text: text, Chunks: chunks}, nil
}
