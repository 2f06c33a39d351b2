package gpu

import (
	"log/slog"

	mplwgpu "github.com/KlingelDev/mpl-wgpu"
)

// slogger returns the shared module logger. All logging in internal/gpu
// goes through this function so that mplwgpu.SetLogger covers the GPU
// layer as well.
func slogger() *slog.Logger { return mplwgpu.Logger() }
