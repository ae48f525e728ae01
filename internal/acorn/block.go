package acorn

import (
	"errors"
	"strings"
)

// ErrUnclosedBlock is returned when a brace block never closes before the
// end of input. Callers drop the construct and resume at the next line.
var ErrUnclosedBlock = errors.New("unclosed brace block")

// captureBlock scans forward from (startLine, startCol) with an assumed
// brace count of 1 and returns the dedented text strictly between the
// matching braces, plus the line and column immediately after the closing
// brace. Text after a // marker is excluded from the brace-counting scan
// but still contributes to the returned span.
func captureBlock(lines []string, startLine, startCol int) (content string, endLine, endCol int, err error) {
	braceCount := 1
	var collected []string
	initialCol := startCol

	for idx := startLine; idx < len(lines); idx++ {
		line := lines[idx]
		segment := line
		if idx == startLine {
			segment = line[startCol:]
		}

		scan := segment
		if c := strings.Index(segment, "//"); c >= 0 {
			scan = segment[:c]
		}

		for j := 0; j < len(scan); j++ {
			switch scan[j] {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					collected = append(collected, segment[:j])
					closingCol := j
					if idx == startLine {
						closingCol += initialCol
					}
					return dedent(strings.Join(collected, "\n")), idx, closingCol + 1, nil
				}
			}
		}

		collected = append(collected, segment)
		startCol = 0
	}

	return "", 0, 0, ErrUnclosedBlock
}

// dedent removes the minimum common leading whitespace of non-blank lines.
func dedent(text string) string {
	lines := strings.Split(text, "\n")

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		leading := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent < 0 || leading < minIndent {
			minIndent = leading
		}
	}
	if minIndent <= 0 {
		return text
	}

	dedented := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			dedented[i] = line[minIndent:]
		} else {
			dedented[i] = line
		}
	}
	return strings.Join(dedented, "\n")
}
