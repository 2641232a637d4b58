// painter - software 3D renderer with Loop subdivision
// Draws subdivided meshes with the painter's algorithm: in the terminal, in
// a desktop window, or to a PNG file.
//
// Viewer controls (view and window):
//
//	Click       - Capture the pointer and enable movement
//	Mouse       - Look around (while captured)
//	W/S         - Move forward/back
//	A/D         - Strafe left/right
//	Space       - Random spin impulse
//	R           - Reset spin and camera
//	?           - Toggle HUD (terminal)
//	Esc         - Release the pointer, or quit when released
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}
