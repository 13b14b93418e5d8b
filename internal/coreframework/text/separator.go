package text

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ScaledSeparatorMarker is replaced by a padding run sized to the line width.
	ScaledSeparatorMarker = "{scaled.separator}"

	// DefaultLineLength is the target visual width when none is configured.
	DefaultLineLength = 60

	// DefaultMinPadding is the smallest separator allowed when none is configured.
	DefaultMinPadding = 2

	paddingChar = " "
)

// ErrLineTooLong is matched by every *PaddingError.
var ErrLineTooLong = errors.New("line content too long for configured line_length")

// PaddingError reports a line whose content leaves less than the minimum
// padding. It is a fatal configuration error: the host must stop startup
// processing rather than print the line.
type PaddingError struct {
	ContentLength int
	TargetWidth   int
	MinPadding    int
	Line          string
}

func (e *PaddingError) Error() string {
	return fmt.Sprintf("%s: content length %d, target length %d, min padding %d, line: %s",
		ErrLineTooLong, e.ContentLength, e.TargetWidth, e.MinPadding, e.Line)
}

// Is lets errors.Is(err, ErrLineTooLong) match.
func (e *PaddingError) Is(target error) bool {
	return target == ErrLineTooLong
}

// ScaledSeparator computes the strikethrough padding span that brings content
// to targetWidth columns. content must already have the marker removed.
func ScaledSeparator(content string, targetWidth, minPadding int) (string, error) {
	contentLength := VisualLength(content)
	needed := targetWidth - contentLength
	if needed < minPadding {
		return "", &PaddingError{
			ContentLength: contentLength,
			TargetWidth:   targetWidth,
			MinPadding:    minPadding,
			Line:          content,
		}
	}
	return "<strikethrough>" + strings.Repeat(paddingChar, needed) + "</strikethrough>", nil
}

// ReplaceScaledSeparator substitutes the marker in line with a sized
// separator. Lines without the marker are returned unchanged. Only the first
// marker is padded; any further markers are removed.
func ReplaceScaledSeparator(line string, targetWidth, minPadding int) (string, error) {
	if !strings.Contains(line, ScaledSeparatorMarker) {
		return line, nil
	}
	content := strings.ReplaceAll(line, ScaledSeparatorMarker, "")
	padding, err := ScaledSeparator(content, targetWidth, minPadding)
	if err != nil {
		var perr *PaddingError
		if errors.As(err, &perr) {
			perr.Line = line
		}
		return "", err
	}
	i := strings.Index(line, ScaledSeparatorMarker)
	rest := strings.ReplaceAll(line[i+len(ScaledSeparatorMarker):], ScaledSeparatorMarker, "")
	return line[:i] + padding + rest, nil
}
