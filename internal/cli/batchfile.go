package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type batchLine struct {
	Line   int
	Source string
	Target string
}

// ParseBatchLine разбирает строку "source<TAB>target".
// Пустые строки и строки с # пропускаются (ok=false, err=nil).
// Без таба допускается "source target", target тогда всё после первого пробела.
func ParseBatchLine(text string) (source, target string, ok bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "#") {
		return "", "", false, nil
	}

	sep := "\t"
	if !strings.Contains(text, sep) {
		sep = " "
	}

	source, target, found := strings.Cut(text, sep)
	source = strings.TrimSpace(source)
	target = normalizeSpaces(target)
	if !found || source == "" || target == "" {
		return "", "", false, fmt.Errorf("expected \"source<TAB>target\", got %q", text)
	}

	return source, target, true, nil
}

// ReadBatchFile читает все строки; ошибка содержит номер строки
func ReadBatchFile(r io.Reader) ([]batchLine, error) {
	var lines []batchLine

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		source, target, ok, err := ParseBatchLine(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if ok {
			lines = append(lines, batchLine{Line: n, Source: source, Target: target})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	return lines, nil
}

func normalizeSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
