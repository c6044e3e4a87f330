package diff

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseStat parses combined `git diff --raw --numstat` output into an
// ordered sequence of FileChange. The raw records (leading ':') supply the
// change kind and rename source; the numstat records supply per-file line
// counts and display order. Binary files report "-" counts.
//
// Trailing blank lines are tolerated. Any other line outside the grammar
// fails with ErrMalformedInput.
func ParseStat(raw string) ([]FileChange, error) {
	kinds := make(map[string]rawRecord)
	var files []FileChange

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			rec, err := parseRawRecord(line)
			if err != nil {
				return nil, err
			}
			kinds[rec.path] = rec
			continue
		}

		fc, err := parseNumstatLine(line)
		if err != nil {
			return nil, err
		}
		if rec, ok := kinds[fc.Path]; ok {
			if fc.Kind != ChangeBinary {
				fc.Kind = rec.kind
			}
			fc.OldPath = rec.oldPath
		}
		files = append(files, fc)
	}

	return files, nil
}

type rawRecord struct {
	path    string
	oldPath string
	kind    ChangeKind
}

// parseRawRecord parses one `git diff --raw` line:
//
//	:100644 100644 abc1234 def5678 M<TAB>path
//	:100644 100644 abc1234 def5678 R086<TAB>old<TAB>new
func parseRawRecord(line string) (rawRecord, error) {
	parts := strings.Split(line, "\t")
	meta := strings.Fields(parts[0])
	if len(meta) < 5 || len(parts) < 2 {
		return rawRecord{}, fmt.Errorf("%w: raw record %q", ErrMalformedInput, line)
	}

	status := meta[4]
	rec := rawRecord{path: parts[1]}
	switch status[0] {
	case 'A':
		rec.kind = ChangeAdded
	case 'D':
		rec.kind = ChangeDeleted
	case 'R', 'C':
		if len(parts) < 3 {
			return rawRecord{}, fmt.Errorf("%w: rename record %q", ErrMalformedInput, line)
		}
		rec.kind = ChangeRenamed
		rec.oldPath = parts[1]
		rec.path = parts[2]
	case 'M', 'T':
		rec.kind = ChangeModified
	default:
		return rawRecord{}, fmt.Errorf("%w: unknown status %q", ErrMalformedInput, status)
	}
	return rec, nil
}

// parseNumstatLine parses one numstat line:
//
//	3<TAB>1<TAB>path
//	-<TAB>-<TAB>image.png
//	1<TAB>2<TAB>dir/{old.txt => new.txt}
func parseNumstatLine(line string) (FileChange, error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return FileChange{}, fmt.Errorf("%w: numstat line %q", ErrMalformedInput, line)
	}

	var fc FileChange
	if parts[0] == "-" && parts[1] == "-" {
		fc.Kind = ChangeBinary
	} else {
		added, err := strconv.Atoi(parts[0])
		if err != nil {
			return FileChange{}, fmt.Errorf("%w: added count in %q", ErrMalformedInput, line)
		}
		removed, err := strconv.Atoi(parts[1])
		if err != nil {
			return FileChange{}, fmt.Errorf("%w: removed count in %q", ErrMalformedInput, line)
		}
		fc.Added, fc.Removed = added, removed
	}

	fc.OldPath, fc.Path = splitRenamePath(parts[2])
	if fc.OldPath != "" && fc.Kind != ChangeBinary {
		fc.Kind = ChangeRenamed
	}
	return fc, nil
}

// splitRenamePath resolves the two rename spellings git uses in numstat
// output: a brace form `dir/{old => new}/file` and a bare form
// `old/path => new/path`. For plain paths old is empty.
func splitRenamePath(p string) (oldPath, newPath string) {
	if open := strings.Index(p, "{"); open >= 0 {
		if close := strings.Index(p[open:], "}"); close >= 0 {
			inner := p[open+1 : open+close]
			if sep := strings.Index(inner, " => "); sep >= 0 {
				prefix, suffix := p[:open], p[open+close+1:]
				oldPath = collapsePath(prefix + inner[:sep] + suffix)
				newPath = collapsePath(prefix + inner[sep+4:] + suffix)
				return oldPath, newPath
			}
		}
	}
	if sep := strings.Index(p, " => "); sep >= 0 {
		return p[:sep], p[sep+4:]
	}
	return "", p
}

// collapsePath removes the doubled separator left behind when a brace
// rename segment is empty on one side, e.g. `dir/` plus an empty segment
// plus `/file`.
func collapsePath(p string) string {
	return strings.ReplaceAll(p, "//", "/")
}
