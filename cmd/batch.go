package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alde/inkframe/internal/log"
	"github.com/alde/inkframe/internal/worker"
	"github.com/alde/inkframe/pkg/assets"
	"github.com/alde/inkframe/pkg/config"
	"github.com/alde/inkframe/pkg/progress"
	"github.com/alde/inkframe/pkg/render"
	"github.com/alde/inkframe/pkg/snapshot"
)

var (
	batchConfig   string
	batchOutDir   string
	batchFrames   []string
	batchWorkers  int
	batchPreview  string
	batchTaken    string
	batchProgress bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [photo...]",
	Short: "Render photos for every frame in a frames file",
	Long: `Render each photo for every frame in a frames file, in parallel.

Output is written to <output-dir>/<frame>/<photo>.bin (or .png).

Examples:
  inkframe batch -c frames.toml -o out/ holiday.jpg
  inkframe batch -c frames.yaml -o out/ --frames kitchen,hall --preview webp *.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchConfig, "config", "c", "", "Frames file (.toml, .yaml) (required)")
	batchCmd.Flags().StringVarP(&batchOutDir, "output-dir", "o", "", "Output directory (required)")
	batchCmd.Flags().StringSliceVar(&batchFrames, "frames", nil, "Only render these frame ids")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Number of worker goroutines (0 = auto)")
	batchCmd.Flags().StringVar(&batchPreview, "preview", "", "Also write previews in this format (png, webp, jpg)")
	batchCmd.Flags().StringVar(&batchTaken, "taken", "", "Capture time for date labels (YYYY-MM-DD, RFC 3339 or 'mtime')")
	batchCmd.Flags().BoolVar(&batchProgress, "progress", true, "Show progress while rendering")

	batchCmd.MarkFlagRequired("config")
	batchCmd.MarkFlagRequired("output-dir")
}

// renderJob renders one photo for one frame
type renderJob struct {
	renderer *render.Renderer
	frame    *render.Frame
	photo    string
	taken    string
	outDir   string
	preview  string
	written  int
}

func (j *renderJob) ID() string {
	return j.frame.Name + "/" + filepath.Base(j.photo)
}

func (j *renderJob) Size() int {
	return j.written
}

func (j *renderJob) Process(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := snapshot.Open(j.photo)
	if err != nil {
		return err
	}
	if src.Taken, err = resolveTaken(j.taken, j.photo); err != nil {
		return err
	}

	out, p, err := j.renderer.Render(src.Image, j.frame, src.Taken)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(j.photo), filepath.Ext(j.photo))
	dir := filepath.Join(j.outDir, j.frame.Name)
	if _, err := snapshot.WriteFrame(filepath.Join(dir, base+filepath.Ext(out.Filename())), out); err != nil {
		return err
	}
	if j.preview != "" {
		if _, err := snapshot.Save(filepath.Join(dir, base+"_preview."+j.preview), p.Final, snapshot.Options{Lossless: true}); err != nil {
			return err
		}
	}
	j.written = len(out.Data)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	file, err := config.Load(batchConfig)
	if err != nil {
		return err
	}
	frames, err := selectFrames(file, batchFrames)
	if err != nil {
		return err
	}
	if batchPreview != "" {
		if _, err := snapshot.FormatFromPath("x." + batchPreview); err != nil {
			return err
		}
	}
	for _, photo := range args {
		if _, err := os.Stat(photo); err != nil {
			return fmt.Errorf("input file does not exist: %s", photo)
		}
	}

	r := render.NewRenderer(assets.New())
	var jobs []worker.Job
	for _, frame := range frames {
		for _, photo := range args {
			jobs = append(jobs, &renderJob{
				renderer: r,
				frame:    frame,
				photo:    photo,
				taken:    batchTaken,
				outDir:   batchOutDir,
				preview:  batchPreview,
			})
		}
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var pool *worker.Pool
	var tracker *progress.Tracker
	if batchProgress {
		tracker = progress.NewTracker(workers, len(jobs))
		pool = worker.NewPoolWithProgress(cmd.Context(), workers, tracker)
	} else {
		pool = worker.NewPool(cmd.Context(), workers)
	}

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt)
	done := make(chan struct{})
	defer func() {
		signal.Stop(sigs)
		close(done)
	}()
	go handleInterrupts(sigs, done, pool)

	if verbose {
		fmt.Printf("Rendering %d photos for %d frames with %d workers\n", len(args), len(frames), pool.WorkerCount())
	}

	start := time.Now()
	results := pool.Run(jobs)
	if tracker != nil {
		tracker.Finish()
	}

	var failed int
	var total uint64
	for _, res := range results {
		if res.Error != nil {
			failed++
			log.Warnf("%s: %v", res.JobID, res.Error)
		}
	}
	for _, job := range jobs {
		total += uint64(job.(*renderJob).written)
	}

	fmt.Printf("Batch complete: %d/%d frames written (%s) in %v\n",
		len(results)-failed, len(results), humanize.Bytes(total), time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		return fmt.Errorf("%d of %d renders failed", failed, len(results))
	}
	return nil
}

// handleInterrupts lets running renders finish on the first interrupt and
// aborts them on the second
func handleInterrupts(sigs <-chan os.Signal, done <-chan struct{}, pool *worker.Pool) {
	select {
	case <-sigs:
		log.Warnf("interrupted, finishing running renders (interrupt again to abort)")
		go pool.Stop()
	case <-done:
		return
	}

	select {
	case <-sigs:
		log.Warnf("aborting running renders")
		pool.ForceStop()
	case <-done:
	}
}

func selectFrames(file *config.File, ids []string) ([]*render.Frame, error) {
	if len(ids) == 0 {
		return file.Frames()
	}
	out := make([]*render.Frame, 0, len(ids))
	for _, id := range ids {
		f, err := file.Frame(strings.TrimSpace(id))
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
