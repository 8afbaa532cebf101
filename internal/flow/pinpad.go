package flow

// PINLength is the number of cells on the PIN pad.
const PINLength = 4

// Keys understood by PinPad.Key.
const (
	KeyBackspace  = "Backspace"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// PinPad models four single-digit inputs with focus movement. The page
// script mirrors these rules in the browser; the server replays submitted
// cells through the same model.
type PinPad struct {
	cells [PINLength]string
	focus int
}

// Cells returns the current cell values.
func (p *PinPad) Cells() [PINLength]string { return p.cells }

// Focus returns the index of the focused cell.
func (p *PinPad) Focus() int { return p.focus }

// Value concatenates the filled cells.
func (p *PinPad) Value() string {
	var out string
	for _, c := range p.cells {
		out += c
	}
	return out
}

// Complete reports whether every cell holds a digit.
func (p *PinPad) Complete() bool {
	for _, c := range p.cells {
		if c == "" {
			return false
		}
	}
	return true
}

// Input applies the value typed into cell i. Non-digits are ignored, an
// empty value clears the cell, one digit fills it and moves focus forward,
// and several digits are treated as a paste.
func (p *PinPad) Input(i int, value string) {
	if !validCell(i) {
		return
	}
	p.focus = i
	if value == "" {
		p.cells[i] = ""
		return
	}
	digits := onlyDigits(value)
	switch len(digits) {
	case 0:
		return
	case 1:
		p.cells[i] = digits
		if i < PINLength-1 {
			p.focus = i + 1
		}
	default:
		p.Paste(i, digits)
	}
}

// Paste distributes the digits of text one per cell, left to right, and
// focuses the last filled cell. A paste holding a full PIN always starts at
// the first cell; a shorter one starts at cell i. Extra digits are dropped.
func (p *PinPad) Paste(i int, text string) {
	if !validCell(i) {
		return
	}
	digits := onlyDigits(text)
	if digits == "" {
		return
	}
	start := i
	if len(digits) >= PINLength {
		start = 0
	}
	last := start
	for j, k := start, 0; j < PINLength && k < len(digits); j, k = j+1, k+1 {
		p.cells[j] = string(digits[k])
		last = j
	}
	p.focus = last
}

// Key handles navigation keys on cell i. Key presses never reach the server;
// the pin page script applies these same rules in the browser.
func (p *PinPad) Key(i int, key string) {
	if !validCell(i) {
		return
	}
	switch key {
	case KeyBackspace:
		if p.cells[i] != "" {
			p.cells[i] = ""
			p.focus = i
			return
		}
		if i > 0 {
			p.cells[i-1] = ""
			p.focus = i - 1
		}
	case KeyArrowLeft:
		if i > 0 {
			p.focus = i - 1
		}
	case KeyArrowRight:
		if i < PINLength-1 {
			p.focus = i + 1
		}
	}
}

// Fill replays submitted cell values. Empty values are skipped so that a
// paste into an earlier cell is not undone by the later, empty fields.
func (p *PinPad) Fill(values []string) {
	for i, v := range values {
		if v != "" {
			p.Input(i, v)
		}
	}
}

func validCell(i int) bool { return i >= 0 && i < PINLength }

func onlyDigits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
