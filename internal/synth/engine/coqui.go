package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"time"
)

const readyPollInterval = 500 * time.Millisecond

// Coqui runs one tts-server subprocess per loaded model and renders by
// calling its HTTP API. Killing the subprocess is what releases the
// model's memory.
type Coqui struct {
	binaryPath   string
	startTimeout time.Duration
	client       *http.Client
}

// NewCoqui creates an engine that spawns the given tts-server binary.
func NewCoqui(binaryPath string, startTimeout time.Duration) *Coqui {
	if binaryPath == "" {
		binaryPath = "tts-server"
	}
	if startTimeout <= 0 {
		startTimeout = 2 * time.Minute
	}
	return &Coqui{
		binaryPath:   binaryPath,
		startTimeout: startTimeout,
		// Rendering is CPU-bound on the server side and can take a while
		// for long texts.
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

type coquiModel struct {
	key  string
	port int
	cmd  *exec.Cmd
}

func (m *coquiModel) Key() string { return m.key }

// LoadModel starts a tts-server process for the model and waits until it
// answers HTTP requests.
func (c *Coqui) LoadModel(ctx context.Context, key string) (Handle, error) {
	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("allocate port: %w", err)
	}

	// The process must outlive the caller's context; it is torn down
	// explicitly via Unload.
	cmd := exec.Command(c.binaryPath,
		"--model_name", key,
		"--port", strconv.Itoa(port),
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", c.binaryPath, err)
	}

	m := &coquiModel{key: key, port: port, cmd: cmd}
	if err := c.waitReady(ctx, m); err != nil {
		_ = c.Unload(m)
		return nil, err
	}
	return m, nil
}

func (c *Coqui) waitReady(ctx context.Context, m *coquiModel) error {
	deadline := time.Now().Add(c.startTimeout)
	baseURL := fmt.Sprintf("http://127.0.0.1:%d/", m.port)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("model %q not ready after %s", m.key, c.startTimeout)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return err
		}
		resp, err := c.client.Do(req)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode < 500 {
				return nil
			}
		}
		time.Sleep(readyPollInterval)
	}
}

// Render asks the model's tts-server to synthesize text and writes the WAV
// response to dst.
func (c *Coqui) Render(ctx context.Context, h Handle, req RenderRequest, dst string) error {
	m, ok := h.(*coquiModel)
	if !ok {
		return fmt.Errorf("handle for %q was not produced by this engine", h.Key())
	}

	q := url.Values{}
	q.Set("text", req.Text)
	if req.Speaker != "" {
		q.Set("speaker_id", req.Speaker)
	}
	if req.Speed > 0 {
		q.Set("speed", strconv.FormatFloat(req.Speed, 'f', -1, 64))
	}
	apiURL := fmt.Sprintf("http://127.0.0.1:%d/api/tts?%s", m.port, q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create render request: %w", err)
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("render with %q: %w", m.key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("render with %q: HTTP %d: %s", m.key, resp.StatusCode, string(body))
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("open render output: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write render output: %w", err)
	}
	return nil
}

// Unload kills the model's server process.
func (c *Coqui) Unload(h Handle) error {
	m, ok := h.(*coquiModel)
	if !ok || m.cmd == nil || m.cmd.Process == nil {
		return nil
	}
	if err := m.cmd.Process.Kill(); err != nil {
		slog.Warn("kill tts-server", slog.String("model", m.key), slog.String("error", err.Error()))
		return err
	}
	// Reap the process so it does not linger as a zombie.
	_ = m.cmd.Wait()
	return nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port, nil
}
