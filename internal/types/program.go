package types

// ProgramType is the kind of loyalty program a business runs
type ProgramType string

const (
	ProgramTypePoints   ProgramType = "points"
	ProgramTypeStamps   ProgramType = "stamps"
	ProgramTypeCashback ProgramType = "cashback"
)

func (t ProgramType) Validate() bool {
	switch t {
	case ProgramTypePoints, ProgramTypeStamps, ProgramTypeCashback:
		return true
	default:
		return false
	}
}

// EnrollmentStatus is the lifecycle status of a customer's membership in a
// program. Cancelled memberships keep their ledger history queryable.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)
