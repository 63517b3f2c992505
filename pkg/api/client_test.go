package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"unlockdesk/pkg/auth"
	"unlockdesk/pkg/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *auth.Service) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tokens := auth.NewService(nil)
	c := New(Options{BaseURL: srv.URL, Tokens: tokens, Timeout: 5 * time.Second})
	return c, tokens
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRetryAfter401Refresh(t *testing.T) {
	var meCalls, refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/me/", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&meCalls, 1) == 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer fresh" {
			t.Errorf("retry Authorization = %q", got)
		}
		writeJSON(w, http.StatusOK, models.User{ID: 1, Username: "ivan"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		if got := r.Header.Get("Cookie"); got != "refresh_token=r1" {
			t.Errorf("refresh Cookie = %q", got)
		}
		writeJSON(w, http.StatusOK, models.LoginResult{Access: "fresh"})
	})

	c, tokens := newTestClient(t, mux)
	tokens.SetToken("stale")
	tokens.SetRefreshCookie("refresh_token=r1")

	u, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if u.Username != "ivan" {
		t.Fatalf("user = %+v", u)
	}
	if atomic.LoadInt32(&meCalls) != 2 || atomic.LoadInt32(&refreshCalls) != 1 {
		t.Fatalf("me=%d refresh=%d, want 2/1", meCalls, refreshCalls)
	}
	if tokens.Token() != "fresh" {
		t.Fatalf("token = %q after refresh", tokens.Token())
	}
}

func TestSecond401Propagates(t *testing.T) {
	var meCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/me/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&meCalls, 1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "nope"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.LoginResult{Access: "fresh"})
	})

	c, tokens := newTestClient(t, mux)
	tokens.SetToken("stale")

	_, err := c.Me(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v, want 401", err)
	}
	// one original request plus exactly one retry
	if got := atomic.LoadInt32(&meCalls); got != 2 {
		t.Fatalf("me called %d times, want 2", got)
	}
}

func TestBypassPathSkipsRefresh(t *testing.T) {
	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad credentials"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeJSON(w, http.StatusOK, models.LoginResult{Access: "x"})
	})

	c, _ := newTestClient(t, mux)
	_, err := c.Login(context.Background(), models.Credentials{Username: "u", Password: "p"})
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v, want 401", err)
	}
	if atomic.LoadInt32(&refreshCalls) != 0 {
		t.Fatal("login 401 triggered a token refresh")
	}
}

func TestFailedRefreshClearsTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, nil)
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "refresh expired"})
	})

	c, tokens := newTestClient(t, mux)
	tokens.SetToken("stale")
	tokens.SetRefreshCookie("refresh_token=old")

	if _, err := c.Me(context.Background()); err == nil {
		t.Fatal("expected error when refresh fails")
	}
	if tokens.Token() != "" || tokens.RefreshCookie() != "" {
		t.Fatal("tokens not cleared after failed refresh")
	}
}

func TestLoginStoresTokenAndCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username != "ivan" {
			t.Errorf("bad login payload: %+v err=%v", creds, err)
		}
		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "r42", HttpOnly: true, Path: "/"})
		writeJSON(w, http.StatusOK, models.LoginResult{
			Access: "access1",
			User:   &models.User{ID: 9, Username: "ivan"},
		})
	})

	c, tokens := newTestClient(t, mux)
	res, err := c.Login(context.Background(), models.Credentials{Username: "ivan", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User == nil || res.User.ID != 9 {
		t.Fatalf("result = %+v", res)
	}
	if tokens.Token() != "access1" {
		t.Fatalf("token = %q", tokens.Token())
	}
	if tokens.RefreshCookie() != "refresh_token=r42" {
		t.Fatalf("cookie = %q", tokens.RefreshCookie())
	}
}

func TestErrorDetailDecoding(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/appointments/3/take/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "заявка уже взята"})
	})

	c, _ := newTestClient(t, mux)
	err := c.Take(context.Background(), 3)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("err = %v", err)
	}
	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatalf("err %T is not *Error", err)
	}
	if ae.Detail != "заявка уже взята" {
		t.Fatalf("Detail = %q", ae.Detail)
	}
}

func TestMessagesAfterIDQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/appointments/5/messages/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("after_id"); got != "42" {
			t.Errorf("after_id = %q", got)
		}
		writeJSON(w, http.StatusOK, []models.ChatMessage{{ID: "43", Text: "ok"}})
	})

	c, _ := newTestClient(t, mux)
	msgs, err := c.Messages(context.Background(), 5, 42)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "43" {
		t.Fatalf("msgs = %+v", msgs)
	}
}

func TestSendMessageMultipart(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "log.txt")
	if err := os.WriteFile(file, []byte("boot log"), 0o600); err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/appointments/5/messages/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			writeJSON(w, http.StatusBadRequest, nil)
			return
		}
		if got := r.FormValue("text"); got != "вот лог" {
			t.Errorf("text = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("file part: %v", err)
		} else {
			f.Close()
			if hdr.Filename != "log.txt" {
				t.Errorf("filename = %q", hdr.Filename)
			}
		}
		writeJSON(w, http.StatusCreated, models.ChatMessage{ID: "101", Text: "вот лог"})
	})

	c, _ := newTestClient(t, mux)
	msg, err := c.SendMessage(context.Background(), 5, models.SendMessage{Text: "вот лог", FilePath: file})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.ID != "101" {
		t.Fatalf("msg = %+v", msg)
	}
}
