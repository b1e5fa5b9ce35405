package config

// Keys of the persisted Cloud Manager selection.
const (
	KeyOrg             = "cloudmanager_orgid"
	KeyProgram         = "cloudmanager_programid"
	KeyEnvironment     = "cloudmanager_environmentid"
	KeyProgramName     = "cloudmanager_programname"
	KeyEnvironmentName = "cloudmanager_environmentname"
	KeyEdgeDelivery    = "cloudmanager_edge_delivery"

	// KeyConsoleOrg is written by other tooling and used as a fallback org id
	KeyConsoleOrg = "console.org.code"
)

// SelectionKeys lists the keys written by setup, in display order
var SelectionKeys = []string{
	KeyOrg,
	KeyProgram,
	KeyProgramName,
	KeyEnvironment,
	KeyEnvironmentName,
	KeyEdgeDelivery,
}

// Selection is a snapshot of the persisted Cloud Manager selection
type Selection struct {
	OrgID           string `json:"orgId,omitempty"`
	ProgramID       string `json:"programId,omitempty"`
	ProgramName     string `json:"programName,omitempty"`
	EnvironmentID   string `json:"environmentId,omitempty"`
	EnvironmentName string `json:"environmentName,omitempty"`
	EdgeDelivery    bool   `json:"edgeDelivery"`
}

// Selection reads the persisted selection from the merged view
func (s *Store) Selection() Selection {
	return Selection{
		OrgID:           s.GetString(KeyOrg),
		ProgramID:       s.GetString(KeyProgram),
		ProgramName:     s.GetString(KeyProgramName),
		EnvironmentID:   s.GetString(KeyEnvironment),
		EnvironmentName: s.GetString(KeyEnvironmentName),
		EdgeDelivery:    s.GetBool(KeyEdgeDelivery),
	}
}
