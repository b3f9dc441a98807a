package system

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard writes to the host clipboard of the machine running the process.
type Clipboard struct {
	write func(string) error
}

func New() *Clipboard {
	return &Clipboard{write: clipboard.WriteAll}
}

// Available reports whether a clipboard backend (pbcopy, xclip, xsel,
// wl-copy, clip.exe) was found on this host.
func Available() bool {
	return !clipboard.Unsupported
}

func (c *Clipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.write(text); err != nil {
		return fmt.Errorf("write system clipboard: %w", err)
	}
	return nil
}
