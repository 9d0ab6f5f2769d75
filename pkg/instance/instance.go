package instance

import (
	"os"

	"github.com/google/uuid"
)

var fallbackID = uuid.NewString()

// GetID returns a stable identifier for this process. Cart change
// notifications carry it so a writer can ignore its own events.
func GetID() string {
	if id := os.Getenv("INSTANCE_ID"); id != "" {
		return id
	}
	return fallbackID
}
