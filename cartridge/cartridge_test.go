package cartridge

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bdwalton/nesgo/mappers"
	"github.com/bdwalton/nesgo/nesrom"
)

func testROM() []byte {
	header := []byte{0x4e, 0x45, 0x53, 0x1a, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	prg := make([]byte, 16*1024)
	prg[0] = 0x42
	chr := make([]byte, 8*1024)
	chr[0] = 0x24
	buf := append(append([]byte{}, header...), prg...)
	buf = append(buf, chr...)
	return buf
}

func TestLoad(t *testing.T) {
	c, err := Load(bytes.NewReader(testROM()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, ok := c.CpuRead(0x8000); !ok || v != 0x42 {
		t.Errorf("CpuRead(0x8000) = (%#x, %v), want (0x42, true)", v, ok)
	}
	if v := c.PpuRead(0x0000); v != 0x24 {
		t.Errorf("PpuRead(0x0000) = %#x, want 0x24", v)
	}
	if c.MirroringMode() != nesrom.MirrorHorizontal {
		t.Errorf("MirroringMode() = %v, want horizontal", c.MirroringMode())
	}
}

func TestLoadUnsupportedMapper(t *testing.T) {
	rom := testROM()
	rom[6] = 0xf0 // mapper-low nibble set high
	rom[7] = 0xf0
	_, err := Load(bytes.NewReader(rom))
	if !errors.Is(err, mappers.ErrUnsupportedMapper) {
		t.Errorf("Load() err = %v, want ErrUnsupportedMapper", err)
	}
}

func TestLoadBadMagic(t *testing.T) {
	rom := testROM()
	rom[0] = 'X'
	_, err := Load(bytes.NewReader(rom))
	if !errors.Is(err, nesrom.ErrInvalidMagicNumber) {
		t.Errorf("Load() err = %v, want ErrInvalidMagicNumber", err)
	}
}

func TestCpuReadRangePanics(t *testing.T) {
	c := NewTest(0, []uint8{0}, []uint8{0}, 0)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range CpuRead")
		}
	}()
	c.CpuRead(0x1000)
}
