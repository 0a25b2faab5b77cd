package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"golang.org/x/sync/errgroup"
	textunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const chunkSize = 4096

// Run feeds everything read from r through f and writes released lines to w.
// Input is decoded as UTF-8; invalid bytes become U+FFFD. A trailing line
// without a newline is never written. Run returns nil at EOF.
func Run(ctx context.Context, r io.Reader, w io.Writer, f *Filter) error {
	decoded := transform.NewReader(r, textunicode.UTF8.NewDecoder())
	buf := make([]byte, chunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := decoded.Read(buf)
		if n > 0 {
			if werr := release(w, f, string(buf[:n])); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading monitor output: %w", err)
		}
	}
}

// release passes chunk to f and drains every complete line it buffered.
func release(w io.Writer, f *Filter, chunk string) error {
	out := f.Rx(chunk)
	for {
		if out != "" {
			if _, err := io.WriteString(w, out); err != nil {
				return fmt.Errorf("writing filtered output: %w", err)
			}
		}
		if !f.Pending() {
			return nil
		}
		out = f.Rx("")
	}
}

// RunCommand starts a host monitor command and filters its standard output
// into stdout. The command's standard error is copied to stderr unfiltered
// and its standard input is connected to stdin.
func RunCommand(ctx context.Context, name string, args []string, f *Filter, stdin io.Reader, stdout, stderr io.Writer) error {
	// Bound to ctx, not gctx: gctx is cancelled as soon as g.Wait returns.
	//nolint:gosec // G204: the monitor command is supplied by the user
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stderr = stderr

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", name, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The pipe must be read to EOF before Wait closes it.
		if err := Run(gctx, pipe, stdout, f); err != nil {
			_ = cmd.Process.Kill()
			_, _ = io.Copy(io.Discard, pipe)
			return err
		}
		return nil
	})

	filterErr := g.Wait()
	waitErr := cmd.Wait()

	if filterErr != nil {
		return filterErr
	}
	if waitErr != nil {
		return fmt.Errorf("%s: %w", name, waitErr)
	}
	return nil
}
