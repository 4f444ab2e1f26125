package attackforge

import "io"

// EntityKind selects which fields the verifier extracts from a lookup response.
type EntityKind string

const (
	EntityAsset   EntityKind = "asset"
	EntityWriteup EntityKind = "writeup"
	EntityVuln    EntityKind = "vuln"
)

// Valid reports whether k is a known entity kind.
func (k EntityKind) Valid() bool {
	switch k {
	case EntityAsset, EntityWriteup, EntityVuln:
		return true
	default:
		return false
	}
}

// Entity is the identifying data of a record that matched a lookup exactly
// once. Only the fields for Kind are set:
//   - asset: ID
//   - writeup: ID and ReferenceID
//   - vuln: VulnerabilityID
type Entity struct {
	Kind            EntityKind `json:"kind"`
	ID              string     `json:"id,omitempty"`
	ReferenceID     string     `json:"reference_id,omitempty"`
	VulnerabilityID string     `json:"vulnerability_id,omitempty"`
}

// WriteupRef identifies a library writeup.
type WriteupRef struct {
	ID          string `json:"id"`
	ReferenceID string `json:"reference_id"`
}

// AssetIndexEntry is one asset of a bulk listing.
type AssetIndexEntry struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`

	// Projects is the raw project membership list, or nil when the asset
	// record had no projects array.
	Projects []any `json:"projects"`
}

// AssetIndex maps asset names to their entries.
type AssetIndex map[string]AssetIndexEntry

// ProjectStats holds the vulnerability counters of a project.
type ProjectStats struct {
	TotalVulnerabilities  int64 `json:"total_vulnerabilities"`
	OpenVulnerabilities   int64 `json:"open_vulnerabilities"`
	ClosedVulnerabilities int64 `json:"closed_vulnerabilities"`

	CriticalVulnerabilities       int64 `json:"critical_vulnerabilities"`
	CriticalOpenVulnerabilities   int64 `json:"critical_open_vulnerabilities"`
	CriticalClosedVulnerabilities int64 `json:"critical_closed_vulnerabilities"`

	HighVulnerabilities       int64 `json:"high_vulnerabilities"`
	HighOpenVulnerabilities   int64 `json:"high_open_vulnerabilities"`
	HighClosedVulnerabilities int64 `json:"high_closed_vulnerabilities"`

	MediumVulnerabilities       int64 `json:"medium_vulnerabilities"`
	MediumOpenVulnerabilities   int64 `json:"medium_open_vulnerabilities"`
	MediumClosedVulnerabilities int64 `json:"medium_closed_vulnerabilities"`

	LowVulnerabilities       int64 `json:"low_vulnerabilities"`
	LowOpenVulnerabilities   int64 `json:"low_open_vulnerabilities"`
	LowClosedVulnerabilities int64 `json:"low_closed_vulnerabilities"`

	InfoVulnerabilities       int64 `json:"info_vulnerabilities"`
	InfoOpenVulnerabilities   int64 `json:"info_open_vulnerabilities"`
	InfoClosedVulnerabilities int64 `json:"info_closed_vulnerabilities"`
}

// Map returns the counters keyed by their normalized names.
func (s *ProjectStats) Map() map[string]int64 {
	m := make(map[string]int64, len(projectCounters))
	for _, c := range projectCounters {
		m[c.key] = *c.field(s)
	}
	return m
}

// projectCounters lists every counter copied from the remote project record.
// The remote field name is "project_" + key.
var projectCounters = []struct {
	key   string
	field func(*ProjectStats) *int64
}{
	{"total_vulnerabilities", func(s *ProjectStats) *int64 { return &s.TotalVulnerabilities }},
	{"open_vulnerabilities", func(s *ProjectStats) *int64 { return &s.OpenVulnerabilities }},
	{"closed_vulnerabilities", func(s *ProjectStats) *int64 { return &s.ClosedVulnerabilities }},
	{"critical_vulnerabilities", func(s *ProjectStats) *int64 { return &s.CriticalVulnerabilities }},
	{"critical_open_vulnerabilities", func(s *ProjectStats) *int64 { return &s.CriticalOpenVulnerabilities }},
	{"critical_closed_vulnerabilities", func(s *ProjectStats) *int64 { return &s.CriticalClosedVulnerabilities }},
	{"high_vulnerabilities", func(s *ProjectStats) *int64 { return &s.HighVulnerabilities }},
	{"high_open_vulnerabilities", func(s *ProjectStats) *int64 { return &s.HighOpenVulnerabilities }},
	{"high_closed_vulnerabilities", func(s *ProjectStats) *int64 { return &s.HighClosedVulnerabilities }},
	{"medium_vulnerabilities", func(s *ProjectStats) *int64 { return &s.MediumVulnerabilities }},
	{"medium_open_vulnerabilities", func(s *ProjectStats) *int64 { return &s.MediumOpenVulnerabilities }},
	{"medium_closed_vulnerabilities", func(s *ProjectStats) *int64 { return &s.MediumClosedVulnerabilities }},
	{"low_vulnerabilities", func(s *ProjectStats) *int64 { return &s.LowVulnerabilities }},
	{"low_open_vulnerabilities", func(s *ProjectStats) *int64 { return &s.LowOpenVulnerabilities }},
	{"low_closed_vulnerabilities", func(s *ProjectStats) *int64 { return &s.LowClosedVulnerabilities }},
	{"info_vulnerabilities", func(s *ProjectStats) *int64 { return &s.InfoVulnerabilities }},
	{"info_open_vulnerabilities", func(s *ProjectStats) *int64 { return &s.InfoOpenVulnerabilities }},
	{"info_closed_vulnerabilities", func(s *ProjectStats) *int64 { return &s.InfoClosedVulnerabilities }},
}

// ProjectCounterNames returns the normalized counter names in a stable order.
func ProjectCounterNames() []string {
	names := make([]string, len(projectCounters))
	for i, c := range projectCounters {
		names[i] = c.key
	}
	return names
}

// Evidence is a file attached to a vulnerability.
type Evidence struct {
	FileName    string
	ContentType string
	Content     io.Reader
}
