package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusmeet/backend/internal/app/models"
)

const profilePage = `
<html><body><table>
<tr><td>Name</td><td>x</td><td>x</td><td>x</td><td>x</td><td>x</td></tr>
<tr><td>Hong Gildong</td><td>x</td><td>x</td><td>x</td><td>x</td><td>%s</td></tr>
</table></body></html>`

func newTestClient(loginHandler, profileHandler http.HandlerFunc) (*HTTPClient, func()) {
	mux := http.NewServeMux()
	if loginHandler != nil {
		mux.HandleFunc("/login", loginHandler)
	}
	if profileHandler != nil {
		mux.HandleFunc("/profile", profileHandler)
	}
	srv := httptest.NewServer(mux)

	client := NewHTTPClient(Config{
		LoginURL:   srv.URL + "/login",
		ProfileURL: srv.URL + "/profile",
		Timeout:    5 * time.Second,
	})
	return client, srv.Close
}

func TestAuthenticateSuccess(t *testing.T) {
	var gotForm map[string]string
	client, cleanup := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"gubun":    r.PostFormValue("gubun"),
			"user_id":  r.PostFormValue("user_id"),
			"password": r.PostFormValue("password"),
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc123"})
		w.Write([]byte("<html>welcome</html>"))
	}, nil)
	defer cleanup()

	session, err := client.Authenticate(context.Background(), "201900123", "hunter2")
	require.NoError(t, err)
	require.False(t, session.Bypass)
	require.Contains(t, session.Cookie, "JSESSIONID=abc123")

	require.Equal(t, "o", gotForm["gubun"])
	require.Equal(t, "201900123", gotForm["user_id"])
	// sha512("hunter2"), hex
	require.Equal(t, "6b97ed68d14eb3f1aa959ce5d49c7dc612e1eb1dafd73b1e705847483fd6a6c809f2ceb4e8df6ff9984c6298ff0285cace6614bf8daa9f0070101b6c89899e22", gotForm["password"])
}

func TestAuthenticateBadCredentials(t *testing.T) {
	client, cleanup := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc123"})
		w.Write([]byte(`<script>alert("아이디나 비밀번호가 틀렸습니다.");</script>`))
	}, nil)
	defer cleanup()

	_, err := client.Authenticate(context.Background(), "201900123", "wrong")
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestAuthenticateInvalidAccountID(t *testing.T) {
	client := NewHTTPClient(Config{})

	for _, id := range []string{"abc", "1234", "1234567890", "2019-0123", ""} {
		_, err := client.Authenticate(context.Background(), id, "pw")
		require.ErrorIs(t, err, ErrInvalidAccount, "id %q", id)
	}

	_, err := client.Authenticate(context.Background(), "201900123", "")
	require.ErrorIs(t, err, ErrInvalidAccount)
}

func TestAuthenticateTestBypass(t *testing.T) {
	// No server behind this client; a bypass id must not dial out.
	client := NewHTTPClient(Config{})

	session, err := client.Authenticate(context.Background(), "test01", "anything")
	require.NoError(t, err)
	require.True(t, session.Bypass)

	profile, err := client.FetchProfile(context.Background(), session)
	require.NoError(t, err)
	require.Equal(t, models.GenderMale, profile.Gender)
}

func TestFetchProfileGender(t *testing.T) {
	cases := []struct {
		cell string
		want models.Gender
	}{
		{"남", models.GenderMale},
		{"Male", models.GenderMale},
		{"여", models.GenderFemale},
		{"Female", models.GenderFemale},
	}

	for _, tc := range cases {
		page := strings.Replace(profilePage, "%s", tc.cell, 1)
		client, cleanup := newTestClient(nil, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "JSESSIONID=abc123", r.Header.Get("Cookie"))
			w.Write([]byte(page))
		})

		profile, err := client.FetchProfile(context.Background(), Session{Cookie: "JSESSIONID=abc123"})
		require.NoError(t, err)
		require.Equal(t, tc.want, profile.Gender, "cell %q", tc.cell)
		cleanup()
	}
}
