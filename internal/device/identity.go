package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Profile describes the hardware the emulated client claims to be. The
// values feed the user-agent string and stay fixed for every identity so
// the fleet looks like one handset model.
type Profile struct {
	AppVersion     string
	AndroidVersion int
	AndroidRelease string
	DPI            string
	Resolution     string
	Manufacturer   string
	Device         string
	Model          string
	CPU            string
	VersionCode    string
}

// DefaultProfile is the handset presented when the caller does not
// configure one.
var DefaultProfile = Profile{
	AppVersion:     "121.0.0.29.119",
	AndroidVersion: 28,
	AndroidRelease: "9.0",
	DPI:            "480dpi",
	Resolution:     "1080x2076",
	Manufacturer:   "OnePlus",
	Device:         "ONEPLUS A6013",
	Model:          "devitron",
	CPU:            "qcom",
	VersionCode:    "185203708",
}

// Identity is the synthetic device fingerprint presented on every request
// of one linking flow. All fields are derived deterministically from the
// seed so the same account always maps to the same device; changing any
// field mid-flow invalidates the remote session.
type Identity struct {
	Seed      string
	AndroidID string
	GUID      string
	PhoneID   string
	AdID      string
	CSRFToken string
	UserAgent string
}

// NewIdentity derives a stable Identity from seed using profile for the
// user-agent. The seed is normally the external account username.
func NewIdentity(seed string, profile Profile) Identity {
	if profile == (Profile{}) {
		profile = DefaultProfile
	}

	digest := sha256.Sum256([]byte("goLink:device:" + seed))

	return Identity{
		Seed:      seed,
		AndroidID: "android-" + hex.EncodeToString(digest[:8]),
		GUID:      seededUUID(seed, "guid"),
		PhoneID:   seededUUID(seed, "phone"),
		AdID:      seededUUID(seed, "adid"),
		CSRFToken: hex.EncodeToString(digest[16:]),
		UserAgent: profile.UserAgent(),
	}
}

// UserAgent renders the mobile app user-agent string for the profile.
func (p Profile) UserAgent() string {
	return fmt.Sprintf(
		"Instagram %s Android (%d/%s; %s; %s; %s; %s; %s; %s; en_US; %s)",
		p.AppVersion,
		p.AndroidVersion,
		p.AndroidRelease,
		p.DPI,
		p.Resolution,
		p.Manufacturer,
		p.Device,
		p.Model,
		p.CPU,
		p.VersionCode,
	)
}

func seededUUID(seed, kind string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("goLink:"+kind+":"+seed)).String()
}

// IsZero reports whether the identity has not been populated.
func (i Identity) IsZero() bool {
	return i.AndroidID == ""
}
