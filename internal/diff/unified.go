package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	diffHeaderRe = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)
	hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@(.*)$`)
	oldFileRe    = regexp.MustCompile(`^--- (?:a/(.+)|/dev/null)$`)
	newFileRe    = regexp.MustCompile(`^\+\+\+ (?:b/(.+)|/dev/null)$`)
	binaryRe     = regexp.MustCompile(`^Binary files (?:a/(.+) and b/(.+) |.* and .* )?differ$`)
	metaRe       = regexp.MustCompile(`^(index [0-9a-f]+(,[0-9a-f]+)*\.\.[0-9a-f]+( \d{6})?|old mode \d+|new mode \d+|new file mode \d+|deleted file mode \d+|similarity index \d+%|dissimilarity index \d+%|rename from .+|rename to .+|copy from .+|copy to .+)$`)
)

// ParseUnifiedDiff parses the unified diff of a single file. The file
// header block is optional: input may begin directly at the first @@ hunk.
// Binary files yield a FileDiff with the Binary marker and no hunks, and a
// file with no changes yields an empty FileDiff. Text outside the grammar
// fails with ErrMalformedInput.
func ParseUnifiedDiff(raw string) (FileDiff, error) {
	var (
		fd   FileDiff
		hunk *Hunk
	)

	flush := func() {
		if hunk != nil {
			fd.Hunks = append(fd.Hunks, *hunk)
			hunk = nil
		}
	}

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			h, err := parseHunkHeader(m)
			if err != nil {
				return FileDiff{}, err
			}
			hunk = &h
			continue
		}

		if hunk != nil {
			if line == "" {
				// A bare empty line is either the trailing newline of the
				// input or an empty context line mid-hunk.
				if rest := lines[i+1:]; allBlank(rest) {
					continue
				}
				hunk.Lines = append(hunk.Lines, Line{Kind: LineContext})
				continue
			}
			switch line[0] {
			case ' ':
				hunk.Lines = append(hunk.Lines, Line{Kind: LineContext, Text: line[1:]})
			case '+':
				hunk.Lines = append(hunk.Lines, Line{Kind: LineAdded, Text: line[1:]})
			case '-':
				hunk.Lines = append(hunk.Lines, Line{Kind: LineRemoved, Text: line[1:]})
			case '\\':
				// "\ No newline at end of file"
			default:
				return FileDiff{}, fmt.Errorf("%w: line %q", ErrMalformedInput, line)
			}
			continue
		}

		// Header block, before any hunk.
		switch {
		case line == "":
		case diffHeaderRe.MatchString(line):
			m := diffHeaderRe.FindStringSubmatch(line)
			fd.Path = m[2]
		case oldFileRe.MatchString(line):
			m := oldFileRe.FindStringSubmatch(line)
			if fd.Path == "" && m[1] != "" {
				fd.Path = m[1]
			}
		case newFileRe.MatchString(line):
			m := newFileRe.FindStringSubmatch(line)
			if m[1] != "" {
				fd.Path = m[1]
			}
		case binaryRe.MatchString(line):
			m := binaryRe.FindStringSubmatch(line)
			fd.Binary = true
			if fd.Path == "" && len(m) > 2 && m[2] != "" {
				fd.Path = m[2]
			}
		case metaRe.MatchString(line):
		default:
			return FileDiff{}, fmt.Errorf("%w: header line %q", ErrMalformedInput, line)
		}
	}
	flush()

	if fd.Binary && len(fd.Hunks) > 0 {
		return FileDiff{}, fmt.Errorf("%w: hunks in binary diff", ErrMalformedInput)
	}
	return fd, nil
}

func parseHunkHeader(m []string) (Hunk, error) {
	atoi := func(s string, def int) (int, error) {
		if s == "" {
			return def, nil
		}
		return strconv.Atoi(s)
	}

	var (
		h   Hunk
		err error
	)
	if h.OldStart, err = atoi(m[1], 0); err != nil {
		return Hunk{}, fmt.Errorf("%w: hunk header %q", ErrMalformedInput, m[0])
	}
	if h.OldLines, err = atoi(m[2], 1); err != nil {
		return Hunk{}, fmt.Errorf("%w: hunk header %q", ErrMalformedInput, m[0])
	}
	if h.NewStart, err = atoi(m[3], 0); err != nil {
		return Hunk{}, fmt.Errorf("%w: hunk header %q", ErrMalformedInput, m[0])
	}
	if h.NewLines, err = atoi(m[4], 1); err != nil {
		return Hunk{}, fmt.Errorf("%w: hunk header %q", ErrMalformedInput, m[0])
	}
	h.Heading = strings.TrimSpace(m[5])
	return h, nil
}

func allBlank(lines []string) bool {
	for _, l := range lines {
		if l != "" {
			return false
		}
	}
	return true
}

// RenderUnifiedDiff is the inverse of ParseUnifiedDiff. Parsing the
// rendered text yields an identical FileDiff; the round trip is exercised
// by tests and the renderer uses it for the raw error placeholder view.
func RenderUnifiedDiff(fd FileDiff) string {
	var b strings.Builder

	if fd.Path != "" {
		fmt.Fprintf(&b, "--- a/%s\n", fd.Path)
		fmt.Fprintf(&b, "+++ b/%s\n", fd.Path)
	}
	if fd.Binary {
		if fd.Path != "" {
			fmt.Fprintf(&b, "Binary files a/%s and b/%s differ\n", fd.Path, fd.Path)
		} else {
			b.WriteString("Binary files differ\n")
		}
		return b.String()
	}

	for _, h := range fd.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
		if h.Heading != "" {
			b.WriteString(" " + h.Heading)
		}
		b.WriteByte('\n')
		for _, l := range h.Lines {
			switch l.Kind {
			case LineAdded:
				b.WriteByte('+')
			case LineRemoved:
				b.WriteByte('-')
			default:
				b.WriteByte(' ')
			}
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
