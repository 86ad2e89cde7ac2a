package models

import (
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"
)

// Nano is an instant stored as UTC nanoseconds since the epoch. Older
// snapshots serialized instants as RFC3339 strings or epoch milliseconds,
// so unmarshaling accepts those forms too and normalizes to nanoseconds.
type Nano int64

var lastNano int64

// Now returns the current instant, bumped to be strictly greater than any
// instant previously returned by this process. Read-state comparisons use
// strict ordering, so two consecutive calls must never observe the same value.
func Now() Nano {
	for {
		now := time.Now().UTC().UnixNano()
		last := atomic.LoadInt64(&lastNano)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastNano, last, now) {
			return Nano(now)
		}
	}
}

// At converts a time.Time into a Nano instant.
func At(t time.Time) Nano { return Nano(t.UTC().UnixNano()) }

// Time converts back to a time.Time.
func (n Nano) Time() time.Time { return time.Unix(0, int64(n)).UTC() }

// IsZero reports whether the instant is the epoch zero value.
func (n Nano) IsZero() bool { return n == 0 }

// Before and After compare instants.
func (n Nano) Before(o Nano) bool { return n < o }
func (n Nano) After(o Nano) bool  { return n > o }

func (n Nano) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(n), 10)), nil
}

// UnmarshalJSON accepts epoch nanoseconds, epoch milliseconds or seconds
// (disambiguated by magnitude), RFC3339 strings, and null.
func (n *Nano) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*n = 0
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		// numeric string first, then RFC3339
		if v, err := strconv.ParseInt(str, 10, 64); err == nil {
			*n = fromEpoch(v)
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return err
		}
		*n = At(t)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = fromEpoch(int64(f))
	return nil
}

// fromEpoch guesses the unit of a numeric epoch value. Values below 1e12
// are seconds, below 1e15 milliseconds, otherwise nanoseconds.
func fromEpoch(v int64) Nano {
	switch {
	case v == 0:
		return 0
	case v < 1e12:
		return Nano(v * int64(time.Second))
	case v < 1e15:
		return Nano(v * int64(time.Millisecond))
	default:
		return Nano(v)
	}
}
