package remote

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MrEthical07/goLink/internal/challenge"
	"github.com/MrEthical07/goLink/internal/stores"
)

// Profile is the remote account as the platform reports it.
type Profile struct {
	ID        int64  `json:"pk"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	IsPrivate bool   `json:"is_private"`
}

// ChallengeState describes a dispatched verification challenge: the
// contact channel the one-time code went out on and the masked contact
// point shown to the user.
type ChallengeState struct {
	Channel       uint8
	ContactMasked string
}

type loginResponse struct {
	Status       string   `json:"status"`
	LoggedInUser *Profile `json:"logged_in_user"`
}

type userResponse struct {
	Status string   `json:"status"`
	User   *Profile `json:"user"`
}

type challengeResponse struct {
	Status   string `json:"status"`
	StepName string `json:"step_name"`
	StepData struct {
		ContactPoint string `json:"contact_point"`
		FormType     string `json:"form_type"`
	} `json:"step_data"`
}

// Login authenticates with the remote platform. On success the session
// cookies land in the client's jar and the logged-in profile is returned.
func (c *Client) Login(ctx context.Context, username, password string) (*Profile, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("device_id", c.identity.AndroidID)
	form.Set("guid", c.identity.GUID)
	form.Set("phone_id", c.identity.PhoneID)
	form.Set("adid", c.identity.AdID)
	form.Set("login_attempt_count", "0")

	var decoded loginResponse
	if err := c.do(ctx, http.MethodPost, "/accounts/login/", form, &decoded); err != nil {
		return nil, err
	}
	if decoded.Status != "ok" || decoded.LoggedInUser == nil {
		return nil, &MalformedError{Err: errors.New("login response missing logged_in_user")}
	}
	return decoded.LoggedInUser, nil
}

// FetchProfile returns the profile of the currently authenticated session.
func (c *Client) FetchProfile(ctx context.Context) (*Profile, error) {
	var decoded userResponse
	if err := c.do(ctx, http.MethodGet, "/accounts/current_user/", nil, &decoded); err != nil {
		return nil, err
	}
	if decoded.User == nil {
		return nil, &MalformedError{Err: errors.New("current_user response missing user")}
	}
	return decoded.User, nil
}

// FindAccountByName resolves a public account by username.
func (c *Client) FindAccountByName(ctx context.Context, name string) (*Profile, error) {
	var decoded userResponse
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(name)+"/usernameinfo/", nil, &decoded); err != nil {
		return nil, err
	}
	if decoded.User == nil {
		return nil, &MalformedError{Err: errors.New("usernameinfo response missing user")}
	}
	return decoded.User, nil
}

// Follow follows the account with the given remote id on behalf of the
// authenticated session.
func (c *Client) Follow(ctx context.Context, accountID int64) error {
	id := strconv.FormatInt(accountID, 10)
	form := url.Values{}
	form.Set("user_id", id)
	form.Set("device_id", c.identity.AndroidID)

	var decoded struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, "/friendships/create/"+id+"/", form, &decoded); err != nil {
		return err
	}
	if decoded.Status != "ok" {
		return &MalformedError{Err: errors.New("friendship response status " + decoded.Status)}
	}
	return nil
}

// InitiateChallenge asks the remote side to dispatch a one-time code for
// the challenge and reports where the code went.
func (c *Client) InitiateChallenge(ctx context.Context, desc challenge.Descriptor) (*ChallengeState, error) {
	form := url.Values{}
	form.Set("challenge_context", desc.Context)
	form.Set("choice", "1")
	form.Set("guid", c.identity.GUID)
	form.Set("device_id", c.identity.AndroidID)

	var decoded challengeResponse
	if err := c.do(ctx, http.MethodPost, "/challenge/select_verify_method/"+desc.ID+"/", form, &decoded); err != nil {
		return nil, err
	}
	if decoded.StepData.ContactPoint == "" {
		return nil, &MalformedError{Err: errors.New("challenge response missing contact point")}
	}

	return &ChallengeState{
		Channel:       contactChannel(decoded.StepData.FormType, decoded.StepName),
		ContactMasked: decoded.StepData.ContactPoint,
	}, nil
}

// VerifyChallenge submits the user-supplied one-time code against the
// challenge. A wrong code surfaces as a RejectionInvalidCode rejection.
func (c *Client) VerifyChallenge(ctx context.Context, desc challenge.Descriptor, code string) error {
	form := url.Values{}
	form.Set("security_code", code)
	form.Set("challenge_context", desc.Context)
	form.Set("guid", c.identity.GUID)
	form.Set("device_id", c.identity.AndroidID)

	var decoded struct {
		Status string `json:"status"`
	}
	return c.do(ctx, http.MethodPost, desc.Path(), form, &decoded)
}

func contactChannel(formType, stepName string) uint8 {
	switch formType {
	case "email":
		return stores.ContactEmail
	case "phone_number", "phone":
		return stores.ContactPhone
	}
	switch stepName {
	case "verify_email":
		return stores.ContactEmail
	case "verify_code", "verify_phone":
		return stores.ContactPhone
	}
	return stores.ContactUnknown
}
