// Package mplwgpu provides a GPU-accelerated instanced primitive renderer
// with an off-screen capture pipeline, built for plot rendering and visual
// regression testing.
//
// The module is organized in three layers:
//
//   - mplwgpu (this package): the CPU-side data model: per-primitive
//     Instance records, the Scene batch accumulator, camera matrices,
//     image comparison, and PNG persistence.
//   - render: the headless GPU facade that turns a Scene into a tightly
//     packed RGBA frame via the pure-Go wgpu stack.
//   - plot: a small chart-translation layer plus the named visual test
//     cases shared by the regression tests and the mplrender command.
//
// Basic usage:
//
//	h, err := render.NewHeadless(render.DefaultConfig(800, 600))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	scene := mplwgpu.NewScene()
//	scene.Rect(100, 100, 50, 50, mplwgpu.RGB(1, 0, 0), 0, 0, 0)
//	pix, err := h.Capture(scene)
//
// All drawing accumulates into a Scene and is uploaded in one batch per
// frame; see Scene for the ordering and clearing contract.
package mplwgpu
