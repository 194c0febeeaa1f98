package domain

// DeployStatus is the outcome carried in notifications.
type DeployStatus int

const (
	StatusSuccess DeployStatus = iota
	StatusFailure
)

var deployStatusLabels = map[DeployStatus]string{
	StatusSuccess: "Success",
	StatusFailure: "Failure",
}

// Label returns the human-readable label used in notification bodies.
func (s DeployStatus) Label() string {
	if label, ok := deployStatusLabels[s]; ok {
		return label
	}

	return "Unknown"
}
