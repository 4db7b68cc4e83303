// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command trackdemo drives the state tracker through a few typical frame
// shapes and prints the barriers it produces.
//
// With -hal the barriers are also recorded on a noop HAL device. -script runs
// the passes described by a TOML file instead of the built-in scenarios.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/restrack"
	"github.com/gogpu/restrack/halbarrier"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

type scenario struct {
	name string
	desc string
	run  func(*demo)
}

var scenarios = []scenario{
	{"copy", "upload into a texture, then sample it", copyScenario},
	{"divergent", "per-mip requests on a texture", divergentScenario},
	{"join", "two passes spliced into one submission", joinScenario},
	{"copyqueue", "upload on the copy queue, then draw", copyQueueScenario},
}

func main() {
	var (
		name    = flag.String("scenario", "all", "scenario to run: "+scenarioNames()+" or all")
		verbose = flag.Bool("v", false, "enable debug logging")
		useHAL  = flag.Bool("hal", false, "record barriers on a noop HAL device")
		path    = flag.String("script", "", "TOML file describing resources and passes")
	)
	flag.Parse()

	logger := newLogger(*verbose)
	restrack.SetLogger(logger)
	halbarrier.SetLogger(logger)

	var device hal.Device
	if *useHAL {
		d, cleanup, err := openNoopDevice()
		if err != nil {
			log.Fatalf("open noop device: %v", err)
		}
		defer cleanup()
		device = d
	}

	if *path != "" {
		sc, err := loadScript(*path)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("== %s\n", *path)
		d := newDemo(device)
		sc.run(d)
		if err := d.close(); err != nil {
			log.Fatalf("%s: %v", *path, err)
		}
		return
	}

	ran := false
	for _, sc := range scenarios {
		if *name != "all" && *name != sc.name {
			continue
		}
		ran = true
		fmt.Printf("== %s: %s\n", sc.name, sc.desc)
		d := newDemo(device)
		sc.run(d)
		if err := d.close(); err != nil {
			log.Fatalf("%s: %v", sc.name, err)
		}
		fmt.Println()
	}
	if !ran {
		log.Fatalf("unknown scenario %q (want %s or all)", *name, scenarioNames())
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "trackdemo",
	})
	return slog.New(handler)
}

func scenarioNames() string {
	names := make([]string, len(scenarios))
	for i, sc := range scenarios {
		names[i] = sc.name
	}
	return strings.Join(names, ", ")
}

// demo owns one tracking device and, optionally, the HAL objects backing its
// resources.
type demo struct {
	dev      *restrack.Device
	hal      hal.Device
	bind     *halbarrier.Bindings
	textures []hal.Texture
	buffers  []hal.Buffer
	created  []restrack.GpuResource
	err      error
}

func newDemo(device hal.Device) *demo {
	return &demo{
		dev:  restrack.NewDevice(),
		hal:  device,
		bind: halbarrier.NewBindings(),
	}
}

func (d *demo) texture(label string, mips int, initial restrack.State) restrack.GpuResource {
	res := d.dev.Create(restrack.ResourceDesc{SubresourceCount: mips, Label: label}, initial)
	d.created = append(d.created, res)
	if d.hal == nil || d.err != nil {
		return res
	}
	tex, err := d.hal.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: 256, Height: 256, DepthOrArrayLayers: 1},
		MipLevelCount: uint32(mips),
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage: gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc |
			gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		d.err = fmt.Errorf("create texture %s: %w", label, err)
		return res
	}
	d.textures = append(d.textures, tex)
	d.err = d.bind.BindTexture(res.Handle, tex, mips, 1)
	return res
}

func (d *demo) buffer(label string, size uint64, initial restrack.State) restrack.GpuResource {
	res := d.dev.Create(restrack.ResourceDesc{SubresourceCount: 1, BufferOrSimultaneous: true, Label: label}, initial)
	d.created = append(d.created, res)
	if d.hal == nil || d.err != nil {
		return res
	}
	buf, err := d.hal.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: gputypes.BufferUsageCopyDst | gputypes.BufferUsageVertex | gputypes.BufferUsageStorage,
	})
	if err != nil {
		d.err = fmt.Errorf("create buffer %s: %w", label, err)
		return res
	}
	d.buffers = append(d.buffers, buf)
	d.err = d.bind.BindBuffer(res.Handle, buf)
	return res
}

// emit prints barriers and encodes them when a HAL device is attached.
func (d *demo) emit(what string, barriers []restrack.Barrier) {
	if len(barriers) == 0 {
		fmt.Printf("  %-12s (none)\n", what)
		return
	}
	for _, b := range barriers {
		fmt.Printf("  %-12s %v\n", what, b)
	}
	if d.hal == nil || d.err != nil {
		return
	}
	cmd, err := halbarrier.Encode(d.hal, what, d.bind, barriers)
	if err != nil {
		d.err = fmt.Errorf("encode %s: %w", what, err)
		return
	}
	if cmd != nil {
		d.hal.FreeCommandBuffer(cmd)
	}
}

func (d *demo) states(res restrack.GpuResource) {
	fmt.Printf("  %-12s %v %v\n", "committed", res, d.dev.Table().Read(res))
}

func (d *demo) close() error {
	for _, res := range d.created {
		d.dev.OnResourceDestroyed(res)
		d.bind.Unbind(res.Handle)
	}
	for _, tex := range d.textures {
		d.hal.DestroyTexture(tex)
	}
	for _, buf := range d.buffers {
		d.hal.DestroyBuffer(buf)
	}
	if err := d.dev.Shutdown(); err != nil {
		return err
	}
	return d.err
}

func copyScenario(d *demo) {
	tex := d.texture("atlas", 1, restrack.StateCommon)

	pass := d.dev.NewTracker(restrack.WithTrackerLabel("upload+sample"))
	d.emit("upload", pass.RequireState(tex, restrack.StateCopyDest))
	d.emit("sample", pass.RequireState(tex, restrack.StatePixelShaderResource))
	d.emit("pre", pass.BuildPreTransitions())
	pass.StopTracking(false)
	d.states(tex)
}

func divergentScenario(d *demo) {
	tex := d.texture("mipchain", 4, restrack.StateCommon)

	pass := d.dev.NewTracker(restrack.WithTrackerLabel("mips"))
	d.emit("all", pass.RequireState(tex, restrack.StateRenderTarget))
	var mip1 []restrack.Barrier
	if ok, b := pass.RequireSubresourceState(tex, 1, restrack.StatePixelShaderResource); ok {
		mip1 = append(mip1, b)
	}
	d.emit("mip1", mip1)
	d.emit("all", pass.RequireState(tex, restrack.StateCopyDest))
	d.emit("pre", pass.BuildPreTransitions())
	pass.StopTracking(false)
	d.states(tex)
}

func joinScenario(d *demo) {
	color := d.texture("color", 1, restrack.StateCommon)
	vbuf := d.buffer("vertices", 4096, restrack.StateCopyDest)

	draw := d.dev.NewTracker(restrack.WithTrackerLabel("draw"))
	d.emit("draw", draw.RequireState(vbuf, restrack.StateVertexAndConstantBuffer))
	d.emit("draw", draw.RequireState(color, restrack.StateRenderTarget))

	post := d.dev.NewTracker(restrack.WithTrackerLabel("post"))
	d.emit("post", post.RequireState(color, restrack.StatePixelShaderResource))

	d.emit("connector", draw.Join(post))
	d.emit("pre", draw.BuildPreTransitions())
	draw.StopTracking(false)
	d.states(color)
	d.states(vbuf)
}

func copyQueueScenario(d *demo) {
	tex := d.texture("streamed", 2, restrack.StateCommon)

	upload := d.dev.NewTracker(restrack.WithTrackerLabel("copy-queue"))
	d.emit("upload", upload.RequireState(tex, restrack.StateCopyDest))
	d.emit("pre", upload.BuildPreTransitions())
	upload.StopTracking(true)
	d.states(tex)

	draw := d.dev.NewTracker(restrack.WithTrackerLabel("draw"))
	d.emit("sample", draw.RequireState(tex, restrack.StatePixelShaderResource))
	d.emit("pre", draw.BuildPreTransitions())
	draw.StopTracking(false)
	d.states(tex)
}

func openNoopDevice() (hal.Device, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, fmt.Errorf("no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, fmt.Errorf("open adapter: %w", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, cleanup, nil
}
