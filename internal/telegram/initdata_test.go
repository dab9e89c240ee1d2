package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
)

// buildInitData signs a set of fields the way Telegram does.
func buildInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()
	var pairs []string
	for k, v := range fields {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(pairs, "\n")))

	vals := url.Values{}
	for k, v := range fields {
		vals.Add(k, v)
	}
	vals.Add("hash", hex.EncodeToString(mac.Sum(nil)))
	return vals.Encode()
}

func TestValidate_OK(t *testing.T) {
	now := time.Now()
	token := "test-bot-token"
	initData := buildInitData(t, token, map[string]string{
		"auth_date": strconv.FormatInt(now.Unix(), 10),
		"user":      `{"id":42,"username":"u","first_name":"F"}`,
	})

	vals, err := Validate(initData, token, now)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	user, err := ParseUser(vals)
	if err != nil {
		t.Fatalf("ParseUser: %v", err)
	}
	if user.ID != 42 || user.Username != "u" {
		t.Fatalf("user = %+v", user)
	}
}

func TestValidate_Tampered(t *testing.T) {
	now := time.Now()
	token := "test-bot-token"
	initData := buildInitData(t, token, map[string]string{
		"auth_date": strconv.FormatInt(now.Unix(), 10),
		"user":      `{"id":42}`,
	})

	if _, err := Validate(initData+"&extra=1", token, now); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("err = %v; want ErrInvalidHash", err)
	}
}

func TestValidate_WrongToken(t *testing.T) {
	now := time.Now()
	initData := buildInitData(t, "token-a", map[string]string{
		"auth_date": strconv.FormatInt(now.Unix(), 10),
		"user":      `{"id":42}`,
	})

	if _, err := Validate(initData, "token-b", now); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("err = %v; want ErrInvalidHash", err)
	}
}

func TestValidate_Stale(t *testing.T) {
	now := time.Now()
	token := "test-bot-token"
	initData := buildInitData(t, token, map[string]string{
		"auth_date": strconv.FormatInt(now.Add(-2*time.Hour).Unix(), 10),
		"user":      `{"id":42}`,
	})

	if _, err := Validate(initData, token, now); !errors.Is(err, ErrStale) {
		t.Fatalf("err = %v; want ErrStale", err)
	}
}

func TestParseUser_Missing(t *testing.T) {
	if _, err := ParseUser(url.Values{}); !errors.Is(err, ErrNoUser) {
		t.Fatalf("err = %v; want ErrNoUser", err)
	}
}
