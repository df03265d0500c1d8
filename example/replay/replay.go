package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log"
	"os"
	"strings"

	"github.com/edgevision/go-sscma"
	"github.com/edgevision/go-sscma/config"
	"github.com/edgevision/go-sscma/internal/detlog"
	"github.com/edgevision/go-sscma/render/raster"
	"github.com/edgevision/go-sscma/tracker"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	detFile := flag.String("d", "../data/detections.jsonl", "JSON lines file of recorded detections, one frame per line")
	cfgFile := flag.String("c", "", "Optional JSON pipeline config file")
	labelFile := flag.String("l", "", "Optional text file containing model labels")
	snapFile := flag.String("o", "", "Optional PNG file to write a snapshot of the final frame to")
	width := flag.Int("width", 1280, "Width of the snapshot image")
	height := flag.Int("height", 720, "Height of the snapshot image")
	verbose := flag.Bool("verbose", false, "Log track removals and zone events as they happen")

	flag.Parse()

	cfg := config.Empty()

	if *cfgFile != "" {
		var err error
		cfg, err = config.Load(*cfgFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	opts, err := cfg.Options()

	if err != nil {
		log.Fatalf("Error building pipeline options: %v", err)
	}

	pipeline, err := sscma.NewPipeline(opts)

	if err != nil {
		log.Fatalf("Error creating pipeline: %v", err)
	}

	if *verbose {
		pipeline.WithLogger(log.New(os.Stderr, "[sscma] ", 0))
	}

	var labels []string

	if *labelFile != "" {
		labels, err = sscma.LoadLabels(*labelFile)

		if err != nil {
			log.Fatalf("Error loading model labels: %v", err)
		}
	}

	f, err := os.Open(*detFile)

	if err != nil {
		log.Fatalf("Error opening detections file: %v", err)
	}

	defer f.Close()

	reader := detlog.NewReader(f)
	frames := 0
	var last sscma.FrameResult

	for {
		frame, err := reader.Next()

		if err == io.EOF {
			break
		}

		if err != nil {
			log.Fatalf("Error reading detections: %v", err)
		}

		res, err := pipeline.Process(frame.Results())

		if err != nil {
			log.Fatalf("Error processing frame %d: %v", frame.Frame, err)
		}

		frames++
		last = res

		fmt.Println(formatFrame(frame.Frame, res, labels))
	}

	log.Printf("Session %s processed %d frames, %d live tracks",
		pipeline.Session(), frames, len(pipeline.Tracker().TrackIDs()))

	if *snapFile != "" {
		if err := writeSnapshot(*snapFile, *width, *height, last.Tracks, pipeline, labels); err != nil {
			log.Fatalf("Error writing snapshot: %v", err)
		}

		log.Printf("Saved snapshot to %s", *snapFile)
	}
}

// formatFrame renders a frame's tracks and zone events as a single line
func formatFrame(frameNum int, res sscma.FrameResult, labels []string) string {

	var sb strings.Builder

	fmt.Fprintf(&sb, "frame %d:", frameNum)

	for i, track := range res.Tracks {
		box := res.Boxes[i]
		fmt.Fprintf(&sb, " [%d %s %.0f,%.0f %.0fx%.0f]", res.IDs[i],
			sscma.LabelName(labels, track.GetLabel()),
			box.X(), box.Y(), box.Width(), box.Height())
	}

	for _, e := range res.Events {
		fmt.Fprintf(&sb, " {%s %s %d}", e.Zone, e.Kind, e.TrackID)
	}

	return sb.String()
}

// writeSnapshot draws the final frame's tracks and zones onto a blank image
// and saves it as PNG
func writeSnapshot(file string, width, height int, tracks []*tracker.STrack,
	pipeline *sscma.Pipeline, labels []string) error {

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 32, G: 32, B: 32, A: 255}),
		image.Point{}, draw.Src)

	if monitor := pipeline.Monitor(); monitor != nil {
		raster.Zones(img, monitor.Zones(), color.RGBA{R: 0, G: 212, B: 187, A: 255})
	}

	raster.Snapshot(img, tracks, labels)

	out, err := os.Create(file)

	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	if err := png.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("error encoding png: %w", err)
	}

	return out.Close()
}
