package console

import (
	"os"
	"testing"
	"time"
)

// writeTestROM builds a minimal 32 KiB-PRG/8 KiB-CHR NROM image: LDA #$42
// followed by an infinite JMP loop at $8000, with the reset vector pointed
// at it.
func writeTestROM(t *testing.T) string {
	t.Helper()
	header := []byte{0x4e, 0x45, 0x53, 0x1a, 0x02, 0x01, 0x00, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := make([]byte, 32*1024)
	prg[0] = 0xa9 // LDA #$42
	prg[1] = 0x42
	prg[2] = 0x4c // JMP $8000
	prg[3] = 0x00
	prg[4] = 0x80
	prg[0x7ffc] = 0x00 // reset vector -> $8000
	prg[0x7ffd] = 0x80
	chr := make([]byte, 8*1024)

	data := append(append([]byte{}, header...), prg...)
	data = append(data, chr...)

	path := t.TempDir() + "/test.nes"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadNESROMAndStep(t *testing.T) {
	emu := New()
	if err := emu.LoadNESROM(writeTestROM(t)); err != nil {
		t.Fatalf("LoadNESROM: %v", err)
	}
	if emu.CPU.PC != 0x8000 {
		t.Fatalf("PC after reset = %#04x, want 0x8000", emu.CPU.PC)
	}
	if err := emu.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if emu.CPU.A != 0x42 {
		t.Errorf("A = %#02x, want 0x42", emu.CPU.A)
	}
}

func TestClockUntilFrame(t *testing.T) {
	emu := New()
	if err := emu.LoadNESROM(writeTestROM(t)); err != nil {
		t.Fatalf("LoadNESROM: %v", err)
	}
	budget := CyclesPerSecond // one frame is ~29780 cycles; this is ample
	if !emu.ClockUntilFrame(&budget) {
		t.Fatalf("ClockUntilFrame did not report a completed frame within the budget")
	}
}

func TestClockUntilCaughtUp(t *testing.T) {
	emu := New()
	if err := emu.LoadNESROM(writeTestROM(t)); err != nil {
		t.Fatalf("LoadNESROM: %v", err)
	}
	if err := emu.ClockUntilCaughtUp(time.Millisecond); err != nil {
		t.Fatalf("ClockUntilCaughtUp: %v", err)
	}
}

func TestLoadNESROMBadFile(t *testing.T) {
	emu := New()
	if err := emu.LoadNESROM(t.TempDir() + "/missing.nes"); err == nil {
		t.Fatalf("LoadNESROM(missing file) = nil error, want one")
	}
}

func TestTraceFormat(t *testing.T) {
	emu := New()
	if err := emu.LoadNESROM(writeTestROM(t)); err != nil {
		t.Fatalf("LoadNESROM: %v", err)
	}
	trace := emu.Trace()
	if trace == "" {
		t.Fatalf("Trace() returned empty string")
	}
}
