package nesrom

import "testing"

func TestParseHeader(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Header
	}{
		{
			name: "basic mapper 3 horizontal",
			data: []byte{0x4e, 0x45, 0x53, 0x1a, 0x02, 0x01, 0x30, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: Header{
				MapperID:   3,
				Mirroring:  MirrorHorizontal,
				PrgROMSize: 32 * 1024,
				ChrROMSize: 8 * 1024,
				PrgRAMSize: 8 * 1024,
				HasTrainer: false,
				ChrRAMSize: 0,
				IsV2:       false,
			},
		},
		{
			name: "vertical mirroring, trainer, chr-ram",
			data: []byte{0x4e, 0x45, 0x53, 0x1a, 0x01, 0x00, 0x05, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: Header{
				MapperID:   0,
				Mirroring:  MirrorVertical,
				PrgROMSize: 16 * 1024,
				ChrROMSize: 0,
				PrgRAMSize: 16 * 1024,
				HasTrainer: true,
				ChrRAMSize: 8 * 1024,
				IsV2:       false,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseHeader(tc.data)
			if err != nil {
				t.Fatalf("ParseHeader: %v", err)
			}
			if *got != tc.want {
				t.Errorf("ParseHeader() = %+v, want %+v", *got, tc.want)
			}
		})
	}
}

func TestParseHeaderBadMagic(t *testing.T) {
	data := make([]byte, 16)
	copy(data, "BAD\x1a")
	if _, err := ParseHeader(data); err != ErrInvalidMagicNumber {
		t.Errorf("ParseHeader() err = %v, want ErrInvalidMagicNumber", err)
	}
}

func TestParseHeaderV2(t *testing.T) {
	data := []byte{0x4e, 0x45, 0x53, 0x1a, 0x01, 0x01, 0x00, 0x08, 0x00, 0x00, 0x02, 0x03, 0x00, 0x00, 0x00, 0x00}
	h, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if !h.IsV2 {
		t.Fatal("expected IsV2 = true")
	}
	if want := 64 << 2; h.PrgRAMSize != want {
		t.Errorf("PrgRAMSize = %d, want %d", h.PrgRAMSize, want)
	}
	if want := 64 << 3; h.ChrRAMSize != want {
		t.Errorf("ChrRAMSize = %d, want %d", h.ChrRAMSize, want)
	}
}
