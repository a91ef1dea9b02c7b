package entities

// Target is one anatomical site a medication acts on.
// Organ is a free-text label; Region is the authoritative key.
type Target struct {
	Organ  string   `json:"organ" yaml:"organ"`
	Region RegionID `json:"regionId" yaml:"regionId"`
	Effect string   `json:"effect" yaml:"effect"`
}

// TargetMapping holds the ordered primary and secondary targets of a medication.
type TargetMapping struct {
	MedicationID MedicationID `json:"medicationId" yaml:"medicationId"`
	Primary      []Target     `json:"primary" yaml:"primary"`
	Secondary    []Target     `json:"secondary" yaml:"secondary"`
}

// TargetRole tells whether a target is primary or secondary for its medication.
type TargetRole string

const (
	RolePrimary   TargetRole = "primary"
	RoleSecondary TargetRole = "secondary"
)

// All returns primary targets followed by secondary targets, each tagged with its role.
func (m TargetMapping) All() []RoledTarget {
	all := make([]RoledTarget, 0, len(m.Primary)+len(m.Secondary))
	for _, t := range m.Primary {
		all = append(all, RoledTarget{Target: t, Role: RolePrimary})
	}
	for _, t := range m.Secondary {
		all = append(all, RoledTarget{Target: t, Role: RoleSecondary})
	}
	return all
}

type RoledTarget struct {
	Target
	Role TargetRole `json:"role"`
}
