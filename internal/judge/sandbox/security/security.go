// Package security defines sandbox isolation and security profiles.
package security

import "fmt"

// IsolationProfile describes namespace and seccomp settings.
type IsolationProfile struct {
	RootFS         string
	SeccompProfile string
	DisableNetwork bool
}

// StaticResolver resolves profile names from a fixed in-memory table.
type StaticResolver struct {
	profiles map[string]IsolationProfile
}

// NewStaticResolver builds a resolver over the given table.
func NewStaticResolver(profiles map[string]IsolationProfile) *StaticResolver {
	if profiles == nil {
		profiles = make(map[string]IsolationProfile)
	}
	return &StaticResolver{profiles: profiles}
}

// Resolve returns the isolation profile registered under name.
func (r *StaticResolver) Resolve(name string) (IsolationProfile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return IsolationProfile{}, fmt.Errorf("unknown isolation profile: %s", name)
	}
	return p, nil
}

// DefaultProfiles returns the isolation table for the supported languages.
// Compile tasks keep network disabled as well; nothing the toolchain needs
// lives outside the bind-mounted workspace.
func DefaultProfiles() map[string]IsolationProfile {
	profiles := make(map[string]IsolationProfile)
	for _, lang := range []string{"cpp", "c", "python"} {
		profiles[lang+"-compile"] = IsolationProfile{
			SeccompProfile: "compile.json",
			DisableNetwork: true,
		}
		profiles[lang+"-run"] = IsolationProfile{
			SeccompProfile: "run.json",
			DisableNetwork: true,
		}
	}
	return profiles
}
