package core

import (
	"github.com/charmbracelet/log"
)

// Reporter receives the results of an aggregation as they are produced
type Reporter interface {
	// Banner is called once, before the first record of the run
	Banner(root string)
	// Record is called for every record that passes the tag allowlist
	Record(rec TodoRecord)
	// Totals is called after all files have been processed
	Totals(total int, tags *TagCounter)
}

// Aggregator scans a directory tree and collects TODO records per tag
type Aggregator struct {
	filter     FileFilter
	extensions []string
	reporter   Reporter
	logger     *log.Logger
}

// NewAggregator creates an aggregator from the config, reporting into reporter
func NewAggregator(cfg Config, reporter Reporter, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.Default()
	}

	return &Aggregator{
		filter:     cfg.Filter(),
		extensions: cfg.Extensions,
		reporter:   reporter,
		logger:     logger,
	}
}

// Run scans root and reports every TODO found. Tags are counted for all
// records, but only records passing the tag allowlist are reported.
func (a *Aggregator) Run(root string) (*Summary, error) {
	files, err := ScanDirectory(root, a.filter, a.extensions, a.logger)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Scanning files", "root", root, "files", len(files))

	summary := &Summary{
		Root:  root,
		Files: len(files),
		Tags:  NewTagCounter(),
	}

	bannerPrinted := false
	for _, path := range files {
		records, err := ParseTodoComments(path)
		if err != nil {
			a.logger.Warn("Skipping unreadable file", "path", path, "err", err)
			continue
		}

		summary.Total += len(records)
		if len(records) > 0 && !bannerPrinted {
			a.reporter.Banner(root)
			bannerPrinted = true
		}

		for _, rec := range records {
			summary.Tags.Add(rec.Tags...)

			if !a.filter.MatchesTags(rec) {
				continue
			}

			a.reporter.Record(rec)
			summary.Records = append(summary.Records, rec)
		}
	}

	a.reporter.Totals(summary.Total, summary.Tags)

	a.logger.Debug("Scan finished", "total", summary.Total, "printed", len(summary.Records), "tags", summary.Tags.Len())

	return summary, nil
}
