// Package runner executes the build command and surfaces its output a line
// at a time.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// scanner buffer caps a single output line at 1MB.
const maxLineSize = 1024 * 1024

// Run executes command through the shell in workdir and calls onLine for
// every line of stdout and stderr.
func Run(ctx context.Context, workdir, command string, onLine func(string)) error {
	return RunCommand(ctx, workdir, "sh", []string{"-c", command}, onLine)
}

// RunCommand executes name with args directly, no shell, in workdir and calls
// onLine for every line of stdout and stderr. Lines from the two streams are
// serialized but their relative order is whatever the pipes deliver. Returns
// the command's exit error, if any, after both streams are drained.
func RunCommand(ctx context.Context, workdir, name string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = workdir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start command: %w", err)
	}

	var mu sync.Mutex
	emit := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		onLine(line)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go scanLines(stdout, emit, &wg)
	go scanLines(stderr, emit, &wg)
	wg.Wait()

	return cmd.Wait()
}

func scanLines(r io.Reader, emit func(string), wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		emit(scanner.Text())
	}
}
