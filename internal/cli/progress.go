package cli

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter renders import pipeline progress with progress bars.
type CLIProgressReporter struct {
	quiet bool

	mu        sync.Mutex
	parseBar  *progressbar.ProgressBar
	importBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Println("Discovering library files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	log.Printf("Found %d Acorn source files\n", files)
}

func (c *CLIProgressReporter) OnParseStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parseBar = newBar(totalFiles, "Parsing files", "files/s")
}

func (c *CLIProgressReporter) OnFileParsed(fileName string) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.parseBar != nil {
		c.parseBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnImportStart(totalItems int) {
	if c.quiet || totalItems == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.importBar = newBar(totalItems, "Importing items", "items/s")
}

func (c *CLIProgressReporter) OnItemImported(name string) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.importBar != nil {
		c.importBar.Add(1)
	}
}

func newBar(total int, description, itsString string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(itsString),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}
