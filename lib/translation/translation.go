package translation

import (
	"github.com/leonelquinteros/gotext"
)

// Translate resolves a message id against the configured locale and
// falls back to the id itself when no translation is loaded.
func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}
