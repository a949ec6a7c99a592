package extract

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	rpdf "rsc.io/pdf"
)

// PageTexts returns the text of every page, one string per page. Text runs are
// grouped into lines by baseline, top to bottom, then ordered left to right.
func PageTexts(path string) (pages []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	// rsc.io/pdf panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("read pdf %s: %v", path, r)
		}
	}()

	doc, err := rpdf.NewReader(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	n := doc.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, layoutText(p.Content().Text))
	}
	return pages, nil
}

type run struct {
	x, w float64
	line float64
	s    string
}

func layoutText(texts []rpdf.Text) string {
	if len(texts) == 0 {
		return ""
	}
	runs := make([]run, 0, len(texts))
	for _, t := range texts {
		runs = append(runs, run{x: t.X, w: t.W, line: math.Round(t.Y / 2), s: t.S})
	}
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].line != runs[j].line {
			return runs[i].line > runs[j].line
		}
		return runs[i].x < runs[j].x
	})

	var b strings.Builder
	line := runs[0].line
	lastEnd := runs[0].x
	for i, r := range runs {
		if i > 0 {
			switch {
			case r.line != line:
				b.WriteByte('\n')
				line = r.line
			case r.x-lastEnd > 1.5:
				b.WriteByte(' ')
			}
		}
		b.WriteString(r.s)
		lastEnd = r.x + r.w
	}
	return b.String()
}
