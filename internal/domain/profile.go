package domain

import "strings"

// Transport profile used for route computation.
type Profile string

const (
	ProfileAuto         Profile = "auto"
	ProfileBicycle      Profile = "bicycle"
	ProfilePedestrian   Profile = "pedestrian"
	ProfileBus          Profile = "bus"
	ProfileMotorScooter Profile = "motor_scooter"
	ProfileTruck        Profile = "truck"
)

// DefaultProfile is used when neither the run nor the destination names one.
const DefaultProfile = ProfileAuto

var profiles = []Profile{
	ProfileAuto,
	ProfileBicycle,
	ProfilePedestrian,
	ProfileBus,
	ProfileMotorScooter,
	ProfileTruck,
}

// Profiles returns every supported profile in declaration order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

func (p Profile) Valid() bool {
	for _, known := range profiles {
		if p == known {
			return true
		}
	}
	return false
}

// ParseProfile normalizes s and validates it against the known profiles.
// An empty string yields DefaultProfile.
func ParseProfile(s string) (Profile, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return DefaultProfile, nil
	}

	p := Profile(norm)
	if !p.Valid() {
		return "", &InvalidProfileError{Profile: s}
	}
	return p, nil
}
