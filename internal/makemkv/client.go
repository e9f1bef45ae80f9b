package makemkv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Executor abstracts command execution for testability. onStart receives the
// spawned process id before any output is delivered.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStart func(pid int), onStdout, onStderr func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps makemkvcon robot-mode invocations and keeps track of the
// process ids it has spawned so the daemon can terminate them on shutdown.
type Client struct {
	binary      string
	infoTimeout time.Duration
	ripTimeout  time.Duration
	exec        Executor

	mu   sync.Mutex
	pids map[int]struct{}
}

// New constructs a client for the given makemkvcon binary.
func New(binary string, infoTimeoutSeconds, ripTimeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("makemkv binary required")
	}
	client := &Client{
		binary:      binary,
		infoTimeout: time.Duration(infoTimeoutSeconds) * time.Second,
		ripTimeout:  time.Duration(ripTimeoutSeconds) * time.Second,
		exec:        commandExecutor{},
		pids:        make(map[int]struct{}),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Info scans the disc in the given device, streaming each decoded record to
// onRecord in output order.
func (c *Client) Info(ctx context.Context, device string, onRecord func(Record)) error {
	if strings.TrimSpace(device) == "" {
		return errors.New("device required")
	}
	args := []string{"--robot", "info", "dev:" + device}
	return c.run(ctx, c.infoTimeout, args, onRecord)
}

// RipTitle rips a single title into destDir, streaming decoded records.
func (c *Client) RipTitle(ctx context.Context, device string, titleID int, destDir string, onRecord func(Record)) error {
	if strings.TrimSpace(device) == "" {
		return errors.New("device required")
	}
	if destDir == "" {
		return errors.New("destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	args := []string{"--robot", "--progress=-same", "mkv", "dev:" + device, strconv.Itoa(titleID), destDir}
	return c.run(ctx, c.ripTimeout, args, onRecord)
}

func (c *Client) run(ctx context.Context, timeout time.Duration, args []string, onRecord func(Record)) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var pid int
	onStart := func(p int) {
		pid = p
		c.track(p)
	}
	defer func() {
		if pid != 0 {
			c.untrack(pid)
		}
	}()

	onStdout := func(line string) {
		if onRecord == nil {
			return
		}
		if record, ok := ParseLine(line); ok {
			onRecord(record)
		}
	}
	// stderr is surfaced, never structurally parsed.
	onStderr := func(line string) {
		fmt.Fprintln(os.Stderr, line)
	}

	if err := c.exec.Run(ctx, c.binary, args, onStart, onStdout, onStderr); err != nil {
		return fmt.Errorf("makemkv %s: %w", args[1], err)
	}
	return nil
}

// ActivePIDs returns the process ids of makemkvcon invocations still running.
func (c *Client) ActivePIDs() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	pids := make([]int, 0, len(c.pids))
	for pid := range c.pids {
		pids = append(pids, pid)
	}
	return pids
}

func (c *Client) track(pid int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pids[pid] = struct{}{}
}

func (c *Client) untrack(pid int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pids, pid)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStart func(pid int), onStdout, onStderr func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}
	if onStart != nil {
		onStart(cmd.Process.Pid)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r *bufio.Scanner, forward func(string)) {
		defer wg.Done()
		for r.Scan() {
			if forward != nil {
				forward(r.Text())
			}
		}
		if err := r.Err(); err != nil {
			once.Do(func() { scanErr = err })
		}
	}

	wg.Add(2)
	go scan(bufio.NewScanner(stdout), onStdout)
	go scan(bufio.NewScanner(stderr), onStderr)
	wg.Wait()

	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
