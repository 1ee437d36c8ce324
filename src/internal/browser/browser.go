// Package browser opens URLs with the platform's default handler.
package browser

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Open launches the system browser for the URL. The command's output is
// discarded; only the exit status is reported.
func Open(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("browser: empty url")
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("browser: open %s: %w", url, err)
	}
	return nil
}
