package sweeper

import "time"

// Retry policy for provider calls. Transient listing or deletion errors get
// a few attempts before the item is skipped for this run; the next scheduled
// sweep picks it up again.
const (
	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

// Official rotation guide linked from reminder notices.
const rotateKeysGuideURL = "https://docs.aws.amazon.com/IAM/latest/UserGuide/id_credentials_access-keys.html#Using_RotateAccessKey"

// Date layout used in notification text.
const noticeDateLayout = "2006-01-02"
