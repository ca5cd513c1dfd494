package dirsql

import (
	"bufio"
	"io"
	"sort"
)

// numberedLine is one replacement or insertion targeting a specific
// zero-based line number of the output.
type numberedLine struct {
	num  int
	text string
}

// injection is a sorted queue of numbered lines consumed front to back
// while the base stream is replayed. When two entries target the same
// line number only one can survive; the later-sorted entry wins and the
// earlier is dropped at construction time.
type injection struct {
	pending []numberedLine
}

// newInjection sorts the numbered lines ascending by line number and
// collapses same-number entries to the last one.
func newInjection(lines []numberedLine) *injection {
	sorted := append([]numberedLine(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].num < sorted[j].num
	})

	deduped := sorted[:0]
	for _, nl := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].num == nl.num {
			deduped[n-1] = nl
			continue
		}
		deduped = append(deduped, nl)
	}
	return &injection{pending: deduped}
}

// nextNum returns the line number of the front entry, or false when the
// queue is empty.
func (inj *injection) nextNum() (int, bool) {
	if len(inj.pending) == 0 {
		return 0, false
	}
	return inj.pending[0].num, true
}

// pop consumes and returns the front entry's text
func (inj *injection) pop() string {
	text := inj.pending[0].text
	inj.pending = inj.pending[1:]
	return text
}

// lineInjector merges a base line stream with an injection in a single
// linear pass: two cursors, one over base lines and one over the sorted
// injection, advanced in lockstep by output line number. At each output
// position the pending injected line is emitted in place of (and
// consuming) the corresponding base line; once the base is exhausted,
// blank lines pad the gap up to any remaining injection targets.
type lineInjector struct {
	base    *bufio.Scanner
	inj     *injection
	lineNum int
}

// newLineInjector creates a lineInjector over the base reader
func newLineInjector(base io.Reader, inj *injection) *lineInjector {
	scanner := bufio.NewScanner(base)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &lineInjector{base: scanner, inj: inj}
}

// maxLineBytes bounds a single line of a table file
const maxLineBytes = 16 * 1024 * 1024

// next produces the next output line. The bool is false once both
// cursors are exhausted; any scanner error is returned alongside.
func (li *lineInjector) next() (string, bool, error) {
	defer func() { li.lineNum++ }()

	baseLine, baseOK := "", li.base.Scan()
	if baseOK {
		baseLine = li.base.Text()
	} else if err := li.base.Err(); err != nil {
		return "", false, err
	}

	num, injOK := li.inj.nextNum()
	switch {
	case !baseOK && !injOK:
		return "", false, nil
	case !baseOK:
		// Base exhausted: pad with blanks until the next target is reached.
		if li.lineNum == num {
			return li.inj.pop(), true, nil
		}
		return "", true, nil
	case !injOK:
		return baseLine, true, nil
	default:
		if li.lineNum == num {
			return li.inj.pop(), true, nil
		}
		return baseLine, true, nil
	}
}

// writeTo drains the injector into w, terminating every line with \n
func (li *lineInjector) writeTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for {
		line, ok, err := li.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
