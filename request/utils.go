package request

import (
	"strconv"
	"time"
)

// RandomString returns the current Unix timestamp in seconds, used as the
// `t` query parameter on timestamped polling requests.
func RandomString() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}
