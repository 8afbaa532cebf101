package flow

import "testing"

func TestPinPadTypingMovesFocus(t *testing.T) {
	var p PinPad
	p.Input(0, "1")
	p.Input(1, "2")
	if p.Focus() != 2 {
		t.Fatalf("expected focus 2, got %d", p.Focus())
	}
	p.Input(2, "x")
	if p.Cells()[2] != "" {
		t.Fatal("non-digit input must be ignored")
	}
	p.Input(2, "3")
	p.Input(3, "4")
	if p.Focus() != 3 {
		t.Fatalf("focus must stay on the last cell, got %d", p.Focus())
	}
	if !p.Complete() || p.Value() != "1234" {
		t.Fatalf("unexpected value %q", p.Value())
	}
}

func TestPinPadPasteFullPINIntoAnyCell(t *testing.T) {
	for cell := 0; cell < PINLength; cell++ {
		var p PinPad
		p.Paste(cell, "5678")
		if p.Value() != "5678" {
			t.Fatalf("paste into cell %d gave %q", cell, p.Value())
		}
		if p.Focus() != 3 {
			t.Fatalf("paste into cell %d focused %d", cell, p.Focus())
		}
	}
}

func TestPinPadPartialPasteStartsAtCell(t *testing.T) {
	var p PinPad
	p.Paste(1, "9-8")
	if got := p.Cells(); got != [PINLength]string{"", "9", "8", ""} {
		t.Fatalf("unexpected cells %v", got)
	}
	if p.Focus() != 2 {
		t.Fatalf("expected focus 2, got %d", p.Focus())
	}

	p.Paste(3, "12")
	if p.Cells()[3] != "1" {
		t.Fatalf("expected overflow digits dropped, got %v", p.Cells())
	}
}

func TestPinPadKeys(t *testing.T) {
	var p PinPad
	p.Fill([]string{"1", "2", "", ""})

	p.Key(2, KeyBackspace)
	if p.Cells()[1] != "" || p.Focus() != 1 {
		t.Fatalf("backspace on empty cell should clear previous, got %v focus %d", p.Cells(), p.Focus())
	}
	p.Key(0, KeyBackspace)
	if p.Cells()[0] != "" || p.Focus() != 0 {
		t.Fatalf("backspace on filled cell should clear it, got %v", p.Cells())
	}
	p.Key(0, KeyArrowLeft)
	if p.Focus() != 0 {
		t.Fatal("arrow left at first cell must not move")
	}
	p.Key(2, KeyArrowRight)
	p.Key(3, KeyArrowRight)
	if p.Focus() != 3 {
		t.Fatalf("arrow right at last cell must not move, got %d", p.Focus())
	}
}

func TestPinPadFillReplaysPaste(t *testing.T) {
	var p PinPad
	p.Fill([]string{"", "4321", "", ""})
	if p.Value() != "4321" {
		t.Fatalf("expected pasted pin, got %q", p.Value())
	}
}
