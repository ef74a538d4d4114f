// Command gintendo is a reference ebiten host shell for the emulator core.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bdwalton/nesgo/console"
	"github.com/bdwalton/nesgo/mos6502"
	"github.com/bdwalton/nesgo/ppu"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	romPath = flag.String("nes_rom", "", "Path to NES ROM to run.")
	palPath = flag.String("pal", "", "Optional path to a 192-byte NTSC palette override.")
	scale   = flag.Int("scale", 3, "Integer window scale factor.")
)

// game implements ebiten.Game, presenting the emulator's framebuffer and
// forwarding keyboard state into controller 0. A real-time driver
// goroutine advances the emulator independently of ebiten's Update/Draw
// calls; mu guards the emulator against concurrent access from the two.
type game struct {
	emu *console.Emulator
	mu  sync.Mutex
}

func newGame(emu *console.Emulator) *game {
	return &game{emu: emu}
}

func (g *game) Update() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pollInput()
	return nil
}

func (g *game) pollInput() {
	c := g.emu.CPU.Bus.Controllers[0]
	c.SetButton(mos6502.ButtonA, ebiten.IsKeyPressed(ebiten.KeyZ))
	c.SetButton(mos6502.ButtonB, ebiten.IsKeyPressed(ebiten.KeyX))
	c.SetButton(mos6502.ButtonSelect, ebiten.IsKeyPressed(ebiten.KeyShift))
	c.SetButton(mos6502.ButtonStart, ebiten.IsKeyPressed(ebiten.KeyEnter))
	c.SetButton(mos6502.ButtonUp, ebiten.IsKeyPressed(ebiten.KeyUp))
	c.SetButton(mos6502.ButtonDown, ebiten.IsKeyPressed(ebiten.KeyDown))
	c.SetButton(mos6502.ButtonLeft, ebiten.IsKeyPressed(ebiten.KeyLeft))
	c.SetButton(mos6502.ButtonRight, ebiten.IsKeyPressed(ebiten.KeyRight))
}

// Draw copies the PPU's framebuffer onto the ebiten screen.
func (g *game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for y := 0; y < ppu.FrameHeight; y++ {
		for x := 0; x < ppu.FrameWidth; x++ {
			screen.Set(x, y, g.emu.PPU.Pixel(x, y))
		}
	}
}

// Layout returns the NES's fixed resolution; ebiten scales the window to
// it rather than the other way around.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.FrameWidth, ppu.FrameHeight
}

// run drives the emulator in real time until ctx is cancelled, pacing
// itself against wall-clock elapsed time between ticks.
func (g *game) run(ctx context.Context) {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now

			g.mu.Lock()
			err := g.emu.ClockUntilCaughtUp(elapsed)
			g.mu.Unlock()

			if err != nil {
				log.Printf("gintendo: %v", err)
			}
		}
	}
}

func main() {
	flag.Parse()
	if *romPath == "" {
		log.Fatalf("gintendo: -nes_rom is required")
	}

	emu := console.New()

	if *palPath != "" {
		data, err := os.ReadFile(*palPath)
		if err != nil {
			log.Fatalf("gintendo: reading palette override: %v", err)
		}
		pal, err := ppu.LoadPalette(data)
		if err != nil {
			log.Fatalf("gintendo: %v", err)
		}
		emu.PPU.Palette = pal
	}

	if err := emu.LoadNESROM(*romPath); err != nil {
		log.Fatalf("gintendo: invalid ROM: %v", err)
	}

	g := newGame(emu)

	ctx, cancel := context.WithCancel(context.Background())
	go g.run(ctx)

	ebiten.SetWindowSize(ppu.FrameWidth*(*scale), ppu.FrameHeight*(*scale))
	ebiten.SetWindowTitle(fmt.Sprintf("gintendo - %s", filepath.Base(*romPath)))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		log.Print(err)
	}
	cancel()
}
