package nedb

import "time"

// ttlEntry records a per-field expiry duration registered via EnsureIndex's
// ExpireAfterSeconds option (spec §6 TTL configuration).
type ttlEntry struct {
	field              string
	expireAfterSeconds float64
}

// isExpired reports whether doc's value at entry.field is a timestamp
// older than entry.expireAfterSeconds (spec §6: expired when field + secs
// is strictly less than now).
func (t ttlEntry) isExpired(doc Doc) bool {
	v := GetDotValue(doc, t.field)
	ts, ok := v.(time.Time)
	if !ok {
		return false
	}
	deadline := ts.Add(time.Duration(t.expireAfterSeconds * float64(time.Second)))
	return deadline.Before(now())
}
