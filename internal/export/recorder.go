package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// FrameSource streams composed frames at a fixed rate until the context
// is cancelled.
type FrameSource interface {
	Frames(ctx context.Context, fps int) <-chan *image.RGBA
}

// AudioTap mirrors raw playback PCM into a writer while one is set.
type AudioTap interface {
	SetCapture(w io.Writer)
}

// Recorder captures the visual frame stream and the playback audio into
// an .mp4. Video is piped to an ffmpeg encode subprocess as raw frames;
// audio lands in a WAV side file; Stop muxes the two legs and removes
// them.
type Recorder struct {
	dir      string
	fps      int
	rate     int
	channels int

	mu        sync.Mutex
	active    bool
	cancel    context.CancelFunc
	cmd       *exec.Cmd
	tap       AudioTap
	audio     *wavCapture
	videoDone chan error

	videoPath string
	audioPath string
	finalPath string
}

// NewRecorder writes finished recordings into dir at the given capture
// frame rate. rate and channels describe the PCM the tap mirrors.
func NewRecorder(dir string, fps, rate, channels int) *Recorder {
	return &Recorder{dir: dir, fps: fps, rate: rate, channels: channels}
}

// Available reports whether ffmpeg is present.
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Active reports whether a recording is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Start begins capturing frames of the given size from src and audio
// from tap.
func (r *Recorder) Start(src FrameSource, tap AudioTap, width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return errors.New("already recording")
	}

	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found")
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", r.dir, err)
	}

	stamp := time.Now().Format("20060102-150405")
	r.videoPath, r.audioPath, r.finalPath = outputPaths(r.dir, stamp)

	audio, err := newWAVCapture(r.audioPath, r.rate, r.channels)
	if err != nil {
		return err
	}

	// The encode process must outlive the frame stream so it can
	// finalize the container; only the stream gets the context.
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.Command(ffmpeg, encodeArgs(width, height, r.fps, r.videoPath)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		audio.Close()
		os.Remove(r.audioPath)
		return fmt.Errorf("ffmpeg stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		audio.Close()
		os.Remove(r.audioPath)
		return fmt.Errorf("starting ffmpeg encode: %w", err)
	}

	done := make(chan error, 1)
	go pumpFrames(src.Frames(ctx, r.fps), stdin, cmd, done)
	tap.SetCapture(audio)

	r.active = true
	r.cancel = cancel
	r.cmd = cmd
	r.tap = tap
	r.audio = audio
	r.videoDone = done
	return nil
}

// pumpFrames forwards frames into the encoder until the stream closes,
// then lets ffmpeg finish the file.
func pumpFrames(frames <-chan *image.RGBA, stdin io.WriteCloser, cmd *exec.Cmd, done chan<- error) {
	var werr error
	for frame := range frames {
		if werr != nil {
			continue
		}
		if _, err := stdin.Write(frame.Pix); err != nil {
			werr = fmt.Errorf("writing frame: %w", err)
		}
	}
	stdin.Close()
	if err := cmd.Wait(); err != nil && werr == nil {
		werr = fmt.Errorf("ffmpeg encode: %w", err)
	}
	done <- werr
}

// Stop ends the capture, muxes the legs and returns the path of the
// finished recording.
func (r *Recorder) Stop() (string, error) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return "", errors.New("not recording")
	}
	r.active = false
	cancel, cmd, tap, audio := r.cancel, r.cmd, r.tap, r.audio
	videoDone := r.videoDone
	videoPath, audioPath, finalPath := r.videoPath, r.audioPath, r.finalPath
	r.cancel, r.cmd, r.tap, r.audio, r.videoDone = nil, nil, nil, nil, nil
	r.mu.Unlock()

	tap.SetCapture(nil)
	cancel()

	var verr error
	select {
	case verr = <-videoDone:
	case <-time.After(30 * time.Second):
		cmd.Process.Kill()
		<-videoDone
		verr = errors.New("ffmpeg encode did not finish")
	}
	aerr := audio.Close()

	if verr != nil {
		os.Remove(videoPath)
		os.Remove(audioPath)
		return "", verr
	}
	if aerr != nil {
		os.Remove(videoPath)
		os.Remove(audioPath)
		return "", fmt.Errorf("audio capture: %w", aerr)
	}

	if err := mux(videoPath, audioPath, finalPath); err != nil {
		return "", err
	}
	os.Remove(videoPath)
	os.Remove(audioPath)
	return finalPath, nil
}

func mux(video, audio, out string) error {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(ctx, ffmpeg, muxArgs(video, audio, out)...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg mux: %w", err)
	}
	return nil
}

func outputPaths(dir, stamp string) (video, audio, final string) {
	base := filepath.Join(dir, "visual-"+stamp)
	return base + ".video.mp4", base + ".wav", base + ".mp4"
}

func encodeArgs(width, height, fps int, out string) []string {
	return []string{
		"-v", "quiet",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(fps),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-y", out,
	}
}

func muxArgs(video, audio, out string) []string {
	return []string{
		"-v", "quiet",
		"-i", video,
		"-i", audio,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		"-y", out,
	}
}
