package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInputClosed is returned by every read once the input is exhausted.
var ErrInputClosed = errors.New("input closed")

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *prompter) println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

func (p *prompter) readLine(caption string) (string, error) {
	fmt.Fprint(p.out, caption)
	text, err := p.in.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && text != "":
		// last line without a newline
	case errors.Is(err, io.EOF):
		return "", ErrInputClosed
	default:
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// readInt asks until it gets an integer of at least min.
func (p *prompter) readInt(caption string, min int) (int, error) {
	for {
		text, err := p.readLine(caption)
		if err != nil {
			return 0, err
		}
		i, err := strconv.Atoi(text)
		if err != nil {
			p.println("Please enter a whole number.")
			continue
		}
		if i < min {
			p.printf("Value must be at least %d.\n", min)
			continue
		}
		return i, nil
	}
}

func (p *prompter) readID(caption string) (int64, error) {
	i, err := p.readInt(caption, 0)
	return int64(i), err
}

// readDecimal asks until it gets a non-negative amount. A decimal comma is
// accepted.
func (p *prompter) readDecimal(caption string) (decimal.Decimal, error) {
	for {
		text, err := p.readLine(caption)
		if err != nil {
			return decimal.Zero, err
		}
		d, err := parseAmount(text)
		if err != nil {
			p.println("Please enter a decimal number.")
			continue
		}
		if d.IsNegative() {
			p.println("Value must not be negative.")
			continue
		}
		return d, nil
	}
}

func (p *prompter) readBool(caption string) (bool, error) {
	text, err := p.readLine(caption)
	if err != nil {
		return false, err
	}
	text = strings.ToLower(text)
	return text == "y" || text == "yes", nil
}

// readIDs parses a comma separated id list. Blank input means none;
// malformed entries are reported and dropped, repeated ones kept once.
func (p *prompter) readIDs(caption string) ([]int64, error) {
	text, err := p.readLine(caption)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			p.printf("Invalid id: %s\n", part)
			continue
		}
		if slices.Contains(ids, id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
