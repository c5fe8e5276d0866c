package engine

import "codearena/internal/judge/sandbox/security"

// ProfileResolver resolves a profile name into an isolation profile.
type ProfileResolver interface {
	Resolve(profile string) (security.IsolationProfile, error)
}

// Config controls sandbox engine behavior.
type Config struct {
	CgroupRoot           string `yaml:"cgroup_root"`
	SeccompDir           string `yaml:"seccomp_dir"`
	HelperPath           string `yaml:"helper_path"`
	StdoutStderrMaxBytes int64  `yaml:"stdout_stderr_max_bytes"`
	EnableSeccomp        bool   `yaml:"enable_seccomp"`
	EnableCgroup         bool   `yaml:"enable_cgroup"`
	EnableNamespaces     bool   `yaml:"enable_namespaces"`
}
