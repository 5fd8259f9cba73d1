package portal

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/campusmeet/backend/internal/app/models"
)

// Portal errors
var (
	ErrBadCredentials = errors.New("portal rejected credentials")
	ErrInvalidAccount = errors.New("invalid account id")
	ErrUnavailable    = errors.New("portal unavailable")
)

var (
	accountIDPattern = regexp.MustCompile(`^\d{5,9}$`)
	testIDPattern    = regexp.MustCompile(`test`)
	maleGenderText   = regexp.MustCompile(`남|Male`)
)

// rejection banner the portal serves on a failed login
const loginFailedMarker = `alert("아이디나 비밀번호가 틀렸습니다.`

// Session is an authenticated portal session. Bypass sessions come from test
// accounts and never touch the portal again.
type Session struct {
	Cookie string
	Bypass bool
}

// Profile is the subset of the portal profile page the engine needs.
type Profile struct {
	Gender models.Gender
}

// Client verifies accounts against the university portal.
type Client interface {
	// Authenticate checks the credentials and returns a session usable for
	// profile reads. Bad credentials yield ErrBadCredentials; malformed
	// account ids yield ErrInvalidAccount.
	Authenticate(ctx context.Context, accountID, password string) (Session, error)
	// FetchProfile reads the profile page of an authenticated session.
	FetchProfile(ctx context.Context, session Session) (Profile, error)
}

// Config holds portal endpoint settings
type Config struct {
	LoginURL   string
	ProfileURL string
	Timeout    time.Duration
}

// HTTPClient is the portal Client backed by the real portal endpoints.
type HTTPClient struct {
	config Config
	client *http.Client
}

// NewHTTPClient creates a portal client
func NewHTTPClient(config Config) *HTTPClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

// Authenticate posts the credential form to the portal login endpoint. The
// password travels as a hex sha512 digest, matching what the portal's own
// login form submits.
func (c *HTTPClient) Authenticate(ctx context.Context, accountID, password string) (Session, error) {
	if testIDPattern.MatchString(accountID) {
		return Session{Bypass: true}, nil
	}

	if !accountIDPattern.MatchString(accountID) || password == "" {
		return Session{}, ErrInvalidAccount
	}

	form := url.Values{}
	form.Set("gubun", "o")
	form.Set("user_id", accountID)
	form.Set("password", sha512Hex(password))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.LoginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Session{}, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if loginRejected(string(body)) {
		return Session{}, ErrBadCredentials
	}

	cookies := resp.Header.Values("Set-Cookie")
	if len(cookies) == 0 {
		return Session{}, ErrBadCredentials
	}

	return Session{Cookie: strings.Join(cookies, "; ")}, nil
}

// FetchProfile scrapes the gender cell from the portal profile page. Bypass
// sessions report MALE without a portal round trip.
func (c *HTTPClient) FetchProfile(ctx context.Context, session Session) (Profile, error) {
	if session.Bypass {
		return Profile{Gender: models.GenderMale}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.ProfileURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Cookie", session.Cookie)

	resp, err := c.client.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile page: %w", err)
	}

	return Profile{Gender: parseGender(doc)}, nil
}

func sha512Hex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// loginRejected reports whether the response body is the portal's bad
// credential alert. The alert arrives wrapped in script tags, so markup is
// stripped before the prefix check.
func loginRejected(body string) bool {
	stripped := strings.TrimSpace(tagPattern.ReplaceAllString(body, ""))
	return strings.HasPrefix(stripped, loginFailedMarker)
}

// parseGender reads the gender cell of the profile table: the second row's
// sixth cell. The page marks male accounts with either Korean or English
// text depending on the portal language setting.
func parseGender(doc *html.Node) models.Gender {
	rows := collectElements(doc, "tr")
	if len(rows) < 2 {
		return models.GenderFemale
	}

	cells := childElements(rows[1])
	if len(cells) < 6 {
		return models.GenderFemale
	}

	if maleGenderText.MatchString(nodeText(cells[5])) {
		return models.GenderMale
	}
	return models.GenderFemale
}

func collectElements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return out
}

func childElements(n *html.Node) []*html.Node {
	var out []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			out = append(out, child)
		}
	}
	return out
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
