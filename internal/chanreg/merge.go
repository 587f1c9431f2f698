package chanreg

import (
	"time"

	"github.com/foxcomet/ircd/internal/ts6"
)

// MergeChannel reconciles ch's creation TS against an incoming view's TS
// (remoteCreated), applying the §4.O tie-break rule: the older timestamp
// wins. If the remote view is older, ch's locally-granted status modes
// (ops/halfops/voice) are stripped from every member, since the remote
// side's channel is deemed authoritative and this core has no founding
// history to reconcile modes against (spec.md §4.O "reset takes the form
// of clearing locally granted channel status").
func MergeChannel(ch *Channel, remoteCreated time.Time) (reset bool) {
	winner, changed := ts6.Resolve(ts6.FromTime(ch.Created), ts6.FromTime(remoteCreated))
	if !changed {
		return false
	}
	ch.Created = time.Unix(int64(winner), 0)
	for i := range ch.Members {
		ch.Members[i].Status = 0
	}
	return true
}
