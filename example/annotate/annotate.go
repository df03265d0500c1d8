package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/edgevision/go-sscma"
	"github.com/edgevision/go-sscma/config"
	"github.com/edgevision/go-sscma/internal/detlog"
	"github.com/edgevision/go-sscma/postprocess"
	"github.com/edgevision/go-sscma/render"
	"gocv.io/x/gocv"
)

var (
	// FPS is the number of FPS to simulate
	FPS         = int64(30)
	FPSinterval = time.Duration(float64(time.Second) / float64(FPS))
)

// Demo replays a video alongside its recorded detections, tracks the
// objects and streams the annotated frames to a browser
type Demo struct {
	// vidBuffer buffers the video frames into memory
	vidBuffer []gocv.Mat
	// detections are the recorded detector results per video frame
	detections [][]postprocess.DetectResult
	// pipeline tracks objects across frames
	pipeline *sscma.Pipeline
	// labels are the class names the detector was trained on
	labels []string
	// showDets renders the raw detections underneath the tracks
	showDets bool
	// mu serializes clients, the tracker must see frames in order
	mu sync.Mutex
}

// NewDemo returns an instance of Demo
func NewDemo(vidFile, detFile, labelFile, cfgFile string) (*Demo, error) {

	d := &Demo{}

	if err := d.bufferVideo(vidFile); err != nil {
		return nil, fmt.Errorf("Error buffering video: %w", err)
	}

	if err := d.loadDetections(detFile); err != nil {
		return nil, fmt.Errorf("Error loading detections: %w", err)
	}

	cfg := config.Empty()

	if cfgFile != "" {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return nil, err
		}
	}

	opts, err := cfg.Options()

	if err != nil {
		return nil, err
	}

	d.pipeline, err = sscma.NewPipeline(opts)

	if err != nil {
		return nil, err
	}

	d.pipeline.WithLogger(log.New(os.Stderr, "[sscma] ", 0))

	d.labels, err = sscma.LoadLabels(labelFile)

	if err != nil {
		return nil, fmt.Errorf("Error loading model labels: %w", err)
	}

	return d, nil
}

// bufferVideo reads in the video frames and saves them to a buffer
func (d *Demo) bufferVideo(vidFile string) error {

	video, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return err
	}

	defer video.Close()

	for {
		img := gocv.NewMat()

		// read the next frame from the video
		if ok := video.Read(&img); !ok {
			img.Close()
			break
		}

		if img.Empty() {
			img.Close()
			continue
		}

		d.vidBuffer = append(d.vidBuffer, img)
	}

	if len(d.vidBuffer) == 0 {
		return fmt.Errorf("no frames in video %s", vidFile)
	}

	return nil
}

// loadDetections reads the recorded detections, indexed by video frame
// number starting at 1
func (d *Demo) loadDetections(detFile string) error {

	f, err := os.Open(detFile)

	if err != nil {
		return err
	}

	defer f.Close()

	frames, err := detlog.NewReader(f).ReadAll()

	if err != nil {
		return err
	}

	d.detections = make([][]postprocess.DetectResult, len(d.vidBuffer))

	for _, frame := range frames {
		if frame.Frame < 1 || frame.Frame > len(d.vidBuffer) {
			continue
		}
		d.detections[frame.Frame-1] = frame.Results()
	}

	return nil
}

// Stream is the HTTP handler function used to stream video frames to browser
func (d *Demo) Stream(w http.ResponseWriter, r *http.Request) {

	d.mu.Lock()
	defer d.mu.Unlock()

	log.Printf("New client connection established\n")

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	// start every client on a fresh tracking session
	d.pipeline.Reset()

	frameNum := -1

	resImg := gocv.NewMat()
	defer resImg.Close()

	ticker := time.NewTicker(FPSinterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Printf("Client disconnected\n")
			return

		// simulate reading 30FPS web camera
		case <-ticker.C:

			frameNum++
			if frameNum > len(d.vidBuffer)-1 {
				// tracks do not carry over when the video loops
				frameNum = 0
				d.pipeline.Reset()
			}

			buf, err := d.ProcessFrame(frameNum, &resImg)

			if err != nil {
				log.Printf("Error occurred during ProcessFrame: %v", err)
				continue
			}

			w.Write([]byte("--frame\r\n"))
			w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
			w.Write(buf.GetBytes())
			w.Write([]byte("\r\n"))

			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

			buf.Close()
		}
	}
}

// ProcessFrame tracks the recorded detections of a video frame, annotates a
// copy of the frame and returns it encoded as a JPG file
func (d *Demo) ProcessFrame(frameNum int, resImg *gocv.Mat) (*gocv.NativeByteBuffer, error) {

	start := time.Now()

	res, err := d.pipeline.Process(d.detections[frameNum])

	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)

	d.vidBuffer[frameNum].CopyTo(resImg)

	if monitor := d.pipeline.Monitor(); monitor != nil {
		render.Zones(resImg, monitor, render.DefaultFont(), render.DefaultZoneStyle())
	}

	if d.showDets {
		render.DetectionBoxes(resImg, d.detections[frameNum], d.labels, render.SmallFont(), 1)
	}

	render.TrackerBoxes(resImg, res.Tracks, d.labels, render.DefaultFont(), 2)
	render.Trail(resImg, res.Tracks, d.pipeline.Trail(), render.DefaultTrailStyle())

	gocv.PutText(resImg, fmt.Sprintf("Frame: %d, Tracks: %d, Tracking: %.2fms",
		res.FrameID, len(res.Tracks), float32(elapsed)/float32(time.Millisecond)),
		image.Pt(4, 14), gocv.FontHersheyDuplex, 0.5, color.RGBA{R: 255, G: 0, B: 0, A: 255}, 1)

	return gocv.IMEncode(".jpg", *resImg)
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	vidFile := flag.String("v", "../data/palace.mp4", "Video file the detections were recorded from")
	detFile := flag.String("d", "../data/palace.jsonl", "JSON lines file of recorded detections, one frame per line")
	labelFile := flag.String("l", "../data/coco_80_labels_list.txt", "Text file containing model labels")
	cfgFile := flag.String("c", "", "Optional JSON pipeline config file")
	httpAddr := flag.String("a", "localhost:8080", "HTTP Address to run server on, format address:port")
	showDets := flag.Bool("dets", false, "Also draw the raw detections")

	flag.Parse()

	demo, err := NewDemo(*vidFile, *detFile, *labelFile, *cfgFile)

	if err != nil {
		log.Fatalf("Error creating demo: %v", err)
	}

	demo.showDets = *showDets

	http.HandleFunc("/stream", demo.Stream)

	log.Printf("Open browser and view video at http://%s/stream", *httpAddr)
	log.Fatal(http.ListenAndServe(*httpAddr, nil))
}
