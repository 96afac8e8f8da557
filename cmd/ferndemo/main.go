// Command ferndemo drives the rendering pipeline headlessly over a small
// scene, mutating it between frames and logging per-frame statistics.
package main

import (
	"flag"
	"image/color"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/image/colornames"

	"github.com/go-fern/fern/pkg/core"
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/objects"
	"github.com/go-fern/fern/pkg/pipeline"
)

func main() {
	configPath := flag.String("config", "fern.yaml", "pipeline config file")
	frames := flag.Int("frames", 10, "number of frames to execute")
	width := flag.Float64("width", 800, "root width")
	height := flag.Float64("height", 600, "root height")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ferndemo",
	})

	config, err := pipeline.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("config", "err", err)
	}
	logger.Info("pipeline configured",
		"target_fps", config.TargetFPS,
		"budget", config.FrameBudget(),
		"parallel_build", config.ParallelBuild)

	coordinator := pipeline.NewCoordinator(config)
	coordinator.SetRootConstraints(graphics.Tight(graphics.Size{Width: *width, Height: *height}))

	scene := &sceneRoot{}
	root := coordinator.Mount(scene)

	for i := 0; i < *frames; i++ {
		result, err := coordinator.ExecuteFrame()
		if err != nil {
			logger.Error("frame failed", "frame", result.FrameNumber, "err", err)
			os.Exit(1)
		}
		logger.Info("frame",
			"n", result.FrameNumber,
			"built", result.BuiltCount,
			"laid_out", result.LaidOutCount,
			"painted", result.PaintedCount,
			"passes", result.BuildIterations,
			"layers", graphics.CountLayers(result.Layer),
			"time", result.FrameTime,
			"over_budget", result.OverBudget)

		// Mutate the scene so the next frame does incremental work.
		scene.tick++
		coordinator.ScheduleBuild(root)
	}

	stats := coordinator.Stats()
	logger.Info("done",
		"frames", stats.Frames,
		"over_budget", stats.OverBudgetFrames,
		"last_time", stats.LastFrameTime)
}

// sceneRoot rebuilds a slightly different scene each tick: only the
// pulsing box changes opacity, everything else stays byte-identical so
// the pipeline reuses it.
type sceneRoot struct {
	tick int
}

func (*sceneRoot) Key() any { return nil }

func (s *sceneRoot) Build(*core.BuildContext) core.Widget {
	pulse := float64(s.tick%8) / 8
	return objects.Padding{
		Insets: objects.UniformInsets(16),
		ChildWidget: objects.Flex{
			Direction: objects.Horizontal,
			ChildWidgets: []core.Widget{
				objects.ColoredBox{WidgetKey: "backdrop", Color: named(colornames.Midnightblue)},
				objects.AspectRatio{
					WidgetKey:   "stage",
					Ratio:       16.0 / 9.0,
					ChildWidget: objects.ColoredBox{Color: named(colornames.Seagreen)},
				},
				objects.Opacity{
					WidgetKey: "pulse",
					Opacity:   0.25 + 0.75*pulse,
					ChildWidget: objects.ClipRect{
						Mode:        graphics.ClipAntiAlias,
						ChildWidget: objects.ColoredBox{Color: named(colornames.Crimson)},
					},
				},
			},
		},
	}
}

func named(c color.RGBA) graphics.Color {
	return graphics.RGB(c.R, c.G, c.B)
}
