package auth

import "time"

// SetNowForTest overrides the codec's clock.
func SetNowForTest(c *CookieCodec, now func() time.Time) {
	c.now = now
}
