// Package telegram verifies and parses Telegram WebApp init data. This is
// the identity assertion gating every mutating action: the client-supplied
// numeric id is only trusted after the HMAC checks out against the bot
// token.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxAuthAge bounds how stale init data may be before it is rejected as a
// possible replay.
const MaxAuthAge = time.Hour

var (
	ErrInvalidHash = errors.New("init data hash mismatch")
	ErrStale       = errors.New("init data too old")
	ErrNoUser      = errors.New("init data has no user field")
)

// WebAppUser is the identity block inside init data.
type WebAppUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// Validate checks the init data HMAC against the bot token and the
// freshness of auth_date. Returns the parsed values on success.
func Validate(initData, botToken string, now time.Time) (url.Values, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidHash
	}

	providedHex := values.Get("hash")
	if providedHex == "" {
		return nil, ErrInvalidHash
	}
	values.Del("hash")

	var pairs []string
	for k, v := range values {
		pairs = append(pairs, k+"="+strings.Join(v, ""))
	}
	sort.Strings(pairs)

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(pairs, "\n")))

	provided, err := hex.DecodeString(providedHex)
	if err != nil || !hmac.Equal(mac.Sum(nil), provided) {
		return nil, ErrInvalidHash
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrStale
	}
	age := now.Unix() - authDate
	// allow small clock skew ahead of us, reject anything older than an hour
	if age > int64(MaxAuthAge.Seconds()) || age < -300 {
		return nil, ErrStale
	}

	return values, nil
}

// ParseUser extracts the user block from validated init data values.
func ParseUser(values url.Values) (*WebAppUser, error) {
	raw := values.Get("user")
	if raw == "" {
		return nil, ErrNoUser
	}
	var u WebAppUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	if u.ID == 0 {
		return nil, ErrNoUser
	}
	return &u, nil
}
