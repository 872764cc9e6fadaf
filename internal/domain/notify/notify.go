package notify

// Severity flags a notification for the user-facing toast surface.
type Severity string

const (
	SeverityNormal      Severity = "normal"
	SeverityDestructive Severity = "destructive"
)

type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Severity    Severity `json:"severity"`
}

// Notifier receives every success/failure outcome the catalog and admin
// flows surface to the user.
type Notifier interface {
	Notify(n Notification)
}
