// Command pageget downloads the numbered pages of an image gallery.
//
//	pageget --url https://site.example/gallery --pages 40 --output ./gallery
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitJobsFailed  = 1
	ExitInvalidArgs = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}
