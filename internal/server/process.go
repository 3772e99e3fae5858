// Package server supervises the music server child process.
package server

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

const (
	DefaultCommand = "mopidy"
	DefaultGrace   = 3 * time.Second
)

// ErrNotStarted is returned when Stop or Wait is called on a process that
// never ran.
var ErrNotStarted = errors.New("server not started")

// Process is a running server child in its own process group.
type Process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
	log  *zap.Logger
	out  *zapio.Writer
}

// Start launches command (split on whitespace) with its output forwarded to
// log at debug level. The child gets its own process group so terminal
// signals reach the bridge only.
func Start(command string, log *zap.Logger) (*Process, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = []string{DefaultCommand}
	}

	out := &zapio.Writer{Log: log.Named("server"), Level: zapcore.DebugLevel}
	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", fields[0], err)
	}
	log.Info("server started", zap.String("command", strings.Join(fields, " ")), zap.Int("pid", cmd.Process.Pid))

	p := &Process{cmd: cmd, done: make(chan struct{}), log: log, out: out}
	go func() {
		p.err = cmd.Wait()
		_ = out.Close()
		close(p.done)
	}()
	return p, nil
}

// Done is closed once the child has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Interrupt sends SIGINT to the child's process group.
func (p *Process) Interrupt() error {
	if p == nil || p.cmd.Process == nil {
		return ErrNotStarted
	}
	if err := syscall.Kill(-p.cmd.Process.Pid, syscall.SIGINT); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("interrupt server: %w", err)
	}
	return nil
}

// Wait blocks until the child exits or ctx ends.
func (p *Process) Wait(ctx context.Context) error {
	if p == nil {
		return ErrNotStarted
	}
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop interrupts the child and gives it grace to exit before killing the
// group.
func (p *Process) Stop(grace time.Duration) error {
	if p == nil {
		return ErrNotStarted
	}
	select {
	case <-p.done:
		return nil
	default:
	}
	if grace <= 0 {
		grace = DefaultGrace
	}
	if err := p.Interrupt(); err != nil {
		return err
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-p.done:
		p.log.Info("server stopped")
		return nil
	case <-timer.C:
	}

	p.log.Warn("server ignored interrupt, killing", zap.Duration("grace", grace))
	if err := syscall.Kill(-p.cmd.Process.Pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("kill server: %w", err)
	}
	<-p.done
	return nil
}
