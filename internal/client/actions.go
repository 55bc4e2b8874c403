package client

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
)

const CopiedMessage = "Copied to clipboard"

var (
	defaultWriteClipboard = clipboard.WriteAll
	defaultOpenBrowser    = browser.OpenURL

	writeClipboard = defaultWriteClipboard
	openBrowser    = defaultOpenBrowser
)

// CopyURL puts url on the system clipboard and shows a confirmation.
func CopyURL(url string, n *Notifier) error {
	if err := writeClipboard(url); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	if n != nil {
		n.Show(CopiedMessage)
	}
	return nil
}

// OpenURL opens url in a new browser tab.
func OpenURL(url string) error {
	if err := openBrowser(url); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}
