package core

// TodoRecord represents a TODO block extracted from a source file
type TodoRecord struct {
	FilePath    string
	LineNumber  int
	Tags        []string
	Description string
}

// FileFilter selects which files get scanned and which records get printed.
// TagAllowlist only affects printing, tags are always counted.
type FileFilter struct {
	FilenamePrefix      string
	DirectorySubstrings []string
	TagAllowlist        []string
}

// MatchesTags reports whether a record passes the tag allowlist
func (f FileFilter) MatchesTags(rec TodoRecord) bool {
	if len(f.TagAllowlist) == 0 {
		return true
	}

	for _, allowed := range f.TagAllowlist {
		for _, tag := range rec.Tags {
			if tag == allowed {
				return true
			}
		}
	}

	return false
}

// Summary is the outcome of a single aggregation run
type Summary struct {
	Root    string
	Files   int
	Total   int
	Tags    *TagCounter
	Records []TodoRecord
}
