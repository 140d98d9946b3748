package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"image/png"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeRasterizer captures SVG documents in headless Chrome. Unlike
// rsvg-convert it runs SMIL animations, so it can grab any moment of an
// animated diagram.
type ChromeRasterizer struct {
	// ExecPath overrides the browser binary. Empty uses the default lookup.
	ExecPath string
	// NoSandbox disables the Chrome sandbox (needed in most containers).
	NoSandbox bool
	// Timeout bounds one capture. Zero means 30 seconds.
	Timeout time.Duration
}

// Frame returns a PNG of svg as it looks at offset into its animations.
// A zero offset captures the initial state.
func (c ChromeRasterizer) Frame(ctx context.Context, svg []byte, at time.Duration) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)
	if c.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	dataURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg)
	seek := fmt.Sprintf(`(() => { const s = document.querySelector('svg'); s.pauseAnimations(); s.setCurrentTime(%f); return true; })()`, at.Seconds())

	var shot []byte
	var ok bool
	tasks := chromedp.Tasks{
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		chromedp.Evaluate(seek, &ok),
		chromedp.Screenshot(`svg`, &shot, chromedp.ByQuery),
	}
	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return nil, fmt.Errorf("chromedp: %w", err)
	}
	if len(shot) == 0 {
		return nil, fmt.Errorf("chromedp: empty screenshot")
	}
	return shot, nil
}

// ToJPEG re-encodes a PNG as JPEG.
func ToJPEG(pngData []byte, quality int) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
