// Package console assembles the CPU, PPU, and cartridge into a runnable
// NES and exposes the facade a host shell drives.
package console

import (
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/bdwalton/nesgo/cartridge"
	"github.com/bdwalton/nesgo/mos6502"
	"github.com/bdwalton/nesgo/ppu"
)

// CyclesPerSecond is the NTSC 2A03's clock rate.
const CyclesPerSecond = 1789773

// Emulator owns the CPU, which transitively owns the CPU bus, PPU, and
// controllers, plus the currently loaded cartridge.
type Emulator struct {
	CPU *mos6502.CPU
	PPU *ppu.PPU

	cartridge *cartridge.Cartridge
}

// New returns an Emulator with no cartridge loaded; the CPU and PPU exist
// and are reset, but most reads return open-bus values until a ROM is
// loaded with LoadNESROM.
func New() *Emulator {
	ppuBus := ppu.NewBus(nil)
	p := ppu.New(ppuBus)
	cpuBus := mos6502.NewBus(p)
	cpu := mos6502.New(cpuBus)
	cpu.Reset()
	return &Emulator{CPU: cpu, PPU: p}
}

// LoadNESROM opens path, parses it as an iNES image, constructs the
// matching mapper, and attaches the resulting cartridge to both buses,
// resetting the CPU so execution starts at the cartridge's reset vector.
func (e *Emulator) LoadNESROM(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cart, err := cartridge.Load(f)
	if err != nil {
		return err
	}

	e.cartridge = cart
	e.CPU.Bus.AttachCartridge(cart)
	e.PPU.AttachCartridge(cart)
	e.CPU.Reset()
	return nil
}

// Cartridge returns the currently loaded cartridge, or nil if none has
// been loaded.
func (e *Emulator) Cartridge() *cartridge.Cartridge { return e.cartridge }

// Step executes exactly one instruction and propagates any decode error.
func (e *Emulator) Step() error {
	_, err := e.CPU.ExecuteNext()
	return err
}

// ClockUntilFrame executes instructions, subtracting each one's cycle cost
// from *cyclesRemaining, until the PPU completes a frame (clearing its
// flag and returning true) or the budget is exhausted (returning false).
// To avoid visibly truncating a frame a few cycles before it ends,
// stepping continues past a spent budget while the PPU is already deep
// into the frame (scanline >= 180). A runtime error is logged and ends
// this call early, same as running out of budget.
func (e *Emulator) ClockUntilFrame(cyclesRemaining *int) bool {
	for *cyclesRemaining > 0 || e.PPU.Scanline >= 180 {
		cycles, err := e.CPU.ExecuteNext()
		if err != nil {
			log.Printf("console: %v", err)
			return false
		}
		*cyclesRemaining -= int(cycles)
		if e.PPU.FrameComplete() {
			e.PPU.ClearFrameComplete()
			return true
		}
	}
	return false
}

// ClockUntilCaughtUp executes enough instructions to cover elapsed
// wall-clock time at CyclesPerSecond, for a host's real-time run loop.
func (e *Emulator) ClockUntilCaughtUp(elapsed time.Duration) error {
	target := int(math.Round(elapsed.Seconds() * CyclesPerSecond))
	for done := 0; done < target; {
		cycles, err := e.CPU.ExecuteNext()
		if err != nil {
			return err
		}
		done += int(cycles)
	}
	return nil
}

// Trace formats a single debug-log line: PC, registers, flags, PPU
// position, and total cycle count.
func (e *Emulator) Trace() string {
	return fmt.Sprintf(
		"%04X A:%02X X:%02X Y:%02X P:%02X SP:%02X PPU:%3d,%3d CYC:%d",
		e.CPU.PC, e.CPU.A, e.CPU.X, e.CPU.Y, uint8(e.CPU.Flags), e.CPU.SP,
		e.PPU.Scanline, e.PPU.Dot, e.CPU.Bus.CyclesTotal,
	)
}
