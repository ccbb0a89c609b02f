package store

import "github.com/roach88/keepconf/internal/validate"

// Run is one recorded validation of a configuration file.
type Run struct {
	ID             string `json:"id"`  // uuid; assigned by WriteRun when empty
	Seq            int64  `json:"seq"` // logical clock; assigned by WriteRun
	Source         string `json:"source"`
	Format         string `json:"format"`
	SourceDigest   string `json:"source_digest,omitempty"`
	ConfigDigest   string `json:"config_digest,omitempty"` // empty when the document did not decode
	Accepted       bool   `json:"accepted"`
	ViolationCount int    `json:"violation_count"`
	Error          string `json:"error,omitempty"` // load or decode failure

	// Violations is populated by ReadRun; ListRuns leaves it nil.
	Violations validate.Violations `json:"violations,omitempty"`
}
