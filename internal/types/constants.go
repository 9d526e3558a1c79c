package types

const ContextIdentityKey = "identity"

const (
	RoleAdmin  = "Admin"
	RoleMember = "Member"
)

const (
	JobTitleOwner  = "Workspace Owner"
	JobTitleMember = "Team Member"
)

const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusOverdue    = "Overdue"

	DefaultPriority    = "Medium"
	DefaultDescription = "Pulse Task"
)

// DefaultJobTitle returns the job title a new user receives when none is given.
func DefaultJobTitle(role string) string {
	if role == RoleAdmin {
		return JobTitleOwner
	}
	return JobTitleMember
}
