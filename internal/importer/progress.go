package importer

// ProgressReporter receives pipeline events during an import run.
// OnFileParsed is called from parse workers, so implementations must be
// safe for concurrent use.
type ProgressReporter interface {
	OnDiscoveryStart()
	OnDiscoveryComplete(files int)
	OnParseStart(totalFiles int)
	OnFileParsed(fileName string)
	OnImportStart(totalItems int)
	OnItemImported(name string)
}

// NoopReporter discards all progress events.
type NoopReporter struct{}

func (NoopReporter) OnDiscoveryStart()       {}
func (NoopReporter) OnDiscoveryComplete(int) {}
func (NoopReporter) OnParseStart(int)        {}
func (NoopReporter) OnFileParsed(string)     {}
func (NoopReporter) OnImportStart(int)       {}
func (NoopReporter) OnItemImported(string)   {}
