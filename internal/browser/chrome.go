package browser

import (
	"context"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// chromeSession drives a Chrome instance over the DevTools protocol.
type chromeSession struct {
	ctx context.Context
}

// NewChromeSession starts a browser and returns the session plus a cleanup
// function that closes it.
func NewChromeSession(parent context.Context, headless bool) (Session, func(), error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("start-maximized", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	cleanup := func() {
		cancelBrowser()
		cancelAlloc()
	}

	// start the browser eagerly so a broken install fails here
	if err := chromedp.Run(browserCtx); err != nil {
		cleanup()
		return nil, nil, err
	}

	return &chromeSession{ctx: browserCtx}, cleanup, nil
}

func (s *chromeSession) Navigate(_ context.Context, url string) error {
	return chromedp.Run(s.ctx, chromedp.Navigate(url))
}

func (s *chromeSession) Find(_ context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	err := chromedp.Run(s.ctx,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, err
	}

	elems := make([]Element, len(nodes))
	for i, n := range nodes {
		elems[i] = &chromeElement{session: s, node: n}
	}
	return elems, nil
}

type chromeElement struct {
	session *chromeSession
	node    *cdp.Node
}

func (e *chromeElement) Click(context.Context) error {
	return chromedp.Run(e.session.ctx, chromedp.MouseClickNode(e.node))
}

func (e *chromeElement) Type(_ context.Context, text string) error {
	return chromedp.Run(e.session.ctx,
		chromedp.SendKeys(e.node.FullXPath(), text, chromedp.BySearch),
	)
}

func (e *chromeElement) SetFiles(_ context.Context, paths ...string) error {
	return chromedp.Run(e.session.ctx,
		chromedp.SetUploadFiles(e.node.FullXPath(), paths, chromedp.BySearch),
	)
}
