package core

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"regexp"
	"strings"
)

// Language defines the comment style TODO blocks are recognised in
type Language struct {
	Extensions        []string
	LineComment       string
	BlockCommentStart string
	BlockCommentEnd   string
}

// CFamily is the C/C++ comment style scanned by default
var CFamily = Language{
	Extensions:        []string{".c", ".cpp", ".h", ".hpp"},
	LineComment:       "//",
	BlockCommentStart: "/*",
	BlockCommentEnd:   "*/",
}

const todoMarker = "TODO"

var (
	commentMarkerRegex = regexp.MustCompile(CFamily.markerPattern())
	todoLineRegex      = regexp.MustCompile(CFamily.markerPattern() + `|` + todoMarker + `:?`)
	tagRegex           = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
)

// markerPattern builds an alternation of the language's comment markers
func (l Language) markerPattern() string {
	var markers []string
	for _, m := range []string{l.LineComment, l.BlockCommentStart, l.BlockCommentEnd} {
		if m != "" {
			markers = append(markers, regexp.QuoteMeta(m))
		}
	}
	return strings.Join(markers, "|")
}

// isComment reports whether a stripped line continues a comment block
func (l Language) isComment(stripped string) bool {
	return (l.LineComment != "" && strings.HasPrefix(stripped, l.LineComment)) ||
		(l.BlockCommentStart != "" && strings.Contains(stripped, l.BlockCommentStart)) ||
		(l.BlockCommentEnd != "" && strings.Contains(stripped, l.BlockCommentEnd))
}

// ExtractTodos finds TODO blocks in the given lines.
// The line number of a record is the line that closed the block, or the
// number of lines minus one when the block runs to the end of input.
func ExtractTodos(lines []string) []TodoRecord {
	var (
		records   []TodoRecord
		buffer    []string
		capturing bool
	)

	for i, line := range lines {
		lineNum := i + 1
		stripped := strings.TrimSpace(line)

		if strings.Contains(strings.ToUpper(stripped), todoMarker) {
			capturing = true
			buffer = append(buffer, strings.TrimSpace(todoLineRegex.ReplaceAllString(stripped, "")))
			continue
		}

		if !capturing {
			continue
		}

		if CFamily.isComment(stripped) {
			buffer = append(buffer, strings.TrimSpace(commentMarkerRegex.ReplaceAllString(stripped, "")))
			continue
		}

		records = append(records, newRecord(lineNum, buffer))
		buffer = nil
		capturing = false
	}

	if capturing {
		records = append(records, newRecord(len(lines)-1, buffer))
	}

	return records
}

// newRecord joins buffered comment fragments and pulls the tags out of them
func newRecord(lineNum int, buffer []string) TodoRecord {
	description := strings.Join(buffer, "\n")
	tags := tagRegex.FindAllString(description, -1)
	for _, tag := range tags {
		description = strings.TrimSpace(strings.ReplaceAll(description, tag, ""))
	}

	// removed tags leave blanks at line ends
	descLines := strings.Split(description, "\n")
	for i, l := range descLines {
		descLines[i] = strings.TrimSpace(l)
	}

	return TodoRecord{
		LineNumber:  lineNum,
		Tags:        tags,
		Description: strings.TrimSpace(strings.Join(descLines, "\n")),
	}
}

// ReadLines reads text lines, dropping invalid UTF-8 and accepting
// \n, \r\n and \r as line terminators
func ReadLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	text := strings.ToValidUTF8(string(data), "")

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	scanner.Split(scanUniversalLines)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func scanUniversalLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// need one more byte to tell \r from \r\n
		return 0, nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}

// ParseTodoComments scans a file for TODO blocks
func ParseTodoComments(filePath string) ([]TodoRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lines, err := ReadLines(file)
	if err != nil {
		return nil, err
	}

	records := ExtractTodos(lines)
	for i := range records {
		records[i].FilePath = filePath
	}

	return records, nil
}
