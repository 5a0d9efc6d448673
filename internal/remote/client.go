// Package remote runs deployment operations against an Odoo instance
// over the system ssh and scp binaries. All operations are blocking
// and synchronous; long-running ones take a context cancelled on
// interrupt.
package remote

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	cerrors "github.com/egeskov-group/odooctl/internal/errors"
	"github.com/egeskov-group/odooctl/internal/logging"
	"github.com/egeskov-group/odooctl/internal/validation"
)

// Runner executes a local command. The default implementation shells
// out; tests substitute a recording fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands through os/exec with stdio passed through.
type ExecRunner struct {
	// Quiet suppresses the child's stdout, used for transfers unless
	// --verbose is set.
	Quiet bool
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr
	if !r.Quiet {
		cmd.Stdout = os.Stdout
	}
	return cmd.Run()
}

// Client issues remote commands against user@host.
type Client struct {
	User   string
	Host   string
	runner Runner
	logger logging.Logger
}

// NewClient creates a client for user@host. A nil runner defaults to
// ExecRunner.
func NewClient(user, host string, runner Runner, logger logging.Logger) (*Client, error) {
	if err := validation.ValidateShellArgument(user); err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeInvalidArgument, "remote", "invalid user")
	}
	if err := validation.ValidateShellArgument(host); err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeInvalidArgument, "remote", "invalid server")
	}
	if runner == nil {
		runner = &ExecRunner{}
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Client{
		User:   user,
		Host:   host,
		runner: runner,
		logger: logger.WithComponent("remote"),
	}, nil
}

func (c *Client) target() string {
	return fmt.Sprintf("%s@%s", c.User, c.Host)
}

// ssh runs a command string on the remote host.
func (c *Client) ssh(ctx context.Context, remoteCmd string) error {
	c.logger.Debug(ctx, "running remote command", "target", c.target(), "cmd", remoteCmd)
	if err := c.runner.Run(ctx, "ssh", c.target(), remoteCmd); err != nil {
		return cerrors.Wrap(err, cerrors.CodeRemoteCommand, "remote",
			"remote command failed on %s", c.target())
	}
	return nil
}

// EnsureDir creates a directory on the remote host.
func (c *Client) EnsureDir(ctx context.Context, path string) error {
	if err := validation.ValidateRemotePath(path); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "remote", "invalid remote path")
	}
	return c.ssh(ctx, fmt.Sprintf("mkdir -p %s", path))
}

// CopyModule copies the contents of localPath into remotePath with
// scp -r. The sources are the module's entries rather than the module
// directory itself: scp copies a directory into an existing target
// directory, which would nest the module one level too deep on every
// redeploy.
func (c *Client) CopyModule(ctx context.Context, localPath, remotePath string) error {
	if err := validation.ValidateRemotePath(remotePath); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "remote", "invalid remote path")
	}

	entries, err := os.ReadDir(localPath)
	if err != nil {
		return fmt.Errorf("reading module directory %s: %w", localPath, err)
	}
	if len(entries) == 0 {
		return cerrors.New(cerrors.CodeInvalidArgument, "remote",
			"module directory %s is empty", localPath)
	}

	args := make([]string, 0, len(entries)+2)
	args = append(args, "-r")
	for _, entry := range entries {
		args = append(args, filepath.Join(localPath, entry.Name()))
	}
	args = append(args, fmt.Sprintf("%s:%s/", c.target(), remotePath))

	c.logger.Debug(ctx, "copying module", "from", localPath, "to", remotePath)
	if err := c.runner.Run(ctx, "scp", args...); err != nil {
		return cerrors.Wrap(err, cerrors.CodeRemoteCommand, "remote",
			"copying %s to %s failed", localPath, c.target())
	}
	return nil
}

// RestartService restarts a systemd service on the remote host.
func (c *Client) RestartService(ctx context.Context, service string) error {
	if err := validation.ValidateShellArgument(service); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "remote", "invalid service name")
	}
	c.logger.Info(ctx, "restarting service", "service", service, "target", c.target())
	return c.ssh(ctx, fmt.Sprintf("sudo systemctl restart %s", service))
}

// RunShellScript pipes a base64-encoded script into odoo-bin shell on
// the remote host. The encoding keeps the script intact through the
// remote shell's quoting.
func (c *Client) RunShellScript(ctx context.Context, database, confPath, script string) error {
	if err := validation.ValidateShellArgument(database); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "remote", "invalid database name")
	}
	if err := validation.ValidateRemotePath(confPath); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "remote", "invalid conf path")
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(script))
	remoteCmd := fmt.Sprintf(
		"source bin/activate && echo %s | base64 -d | src/odoo/odoo-bin shell -c %s -d %s --no-http --log-level=warn",
		encoded, confPath, database)
	return c.ssh(ctx, remoteCmd)
}

// TailLogs streams a remote log file, blocking until the context is
// cancelled or the connection drops. An optional search term filters
// lines through grep on the remote side.
func (c *Client) TailLogs(ctx context.Context, path, search string) error {
	if err := validation.ValidateRemotePath(path); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "remote", "invalid log path")
	}

	remoteCmd := fmt.Sprintf("tail -f /home/%s/%s", c.User, path)
	if search != "" {
		if err := validation.ValidateShellArgument(search); err != nil {
			return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "remote", "invalid search term")
		}
		remoteCmd = fmt.Sprintf("%s | grep --line-buffered -i %s", remoteCmd, search)
	}

	c.logger.Info(ctx, "streaming logs", "target", c.target(), "path", path)
	err := c.runner.Run(ctx, "ssh", c.target(), remoteCmd)
	if ctx.Err() != nil {
		// Interrupted by the user, not a failure.
		return nil
	}
	if err != nil {
		return cerrors.Wrap(err, cerrors.CodeRemoteCommand, "remote", "log streaming ended")
	}
	return nil
}
