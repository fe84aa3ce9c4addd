package domain

// Patient statuses.
const (
	PatientActive   = "active"
	PatientInactive = "inactive"
)

// Patient is a customer record; the industry vocabulary decides what it is called on screen.
type Patient struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
	LastVisit   string `json:"last_visit"`
	Visits      int    `json:"visits"`
	Condition   string `json:"condition"`
	Status      string `json:"status"`
}
