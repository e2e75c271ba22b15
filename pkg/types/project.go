package types

// Project is a named collection of files with metadata. It lives in the
// workspace store and is mutated only through the managers.
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Files maps relative paths ("src/app.py") to content.
	Files map[string]string `json:"files"`

	Time ProjectTime `json:"time"`
}

// ProjectTime contains project timestamps in unix milliseconds.
type ProjectTime struct {
	Created  int64 `json:"created"`
	Modified int64 `json:"modified"`
}

// BackupRecord is an immutable snapshot of a project's files, written either
// by an explicit backup or implicitly before a delete.
type BackupRecord struct {
	ID            string            `json:"id"`
	SourceProject string            `json:"sourceProject"`
	Timestamp     int64             `json:"timestamp"`
	Files         map[string]string `json:"files"`
}
