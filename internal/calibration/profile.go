package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sys/cpu"

	"github.com/agbru/argontune/internal/params"
	"github.com/agbru/argontune/internal/sysmon"
)

// CurrentProfileVersion is bumped whenever the profile layout changes.
const CurrentProfileVersion = 1

// DefaultProfileFileName is the profile file created in the home directory.
const DefaultProfileFileName = ".argontune_profile.json"

// Profile is the persisted result of a calibration on a given machine.
type Profile struct {
	ProfileVersion int `json:"profile_version"`

	// Hardware fingerprint.
	NumCPU      int      `json:"num_cpu"`
	GOARCH      string   `json:"goarch"`
	GOOS        string   `json:"goos"`
	GoVersion   string   `json:"go_version"`
	WordSize    int      `json:"word_size"`
	CPUFeatures []string `json:"cpu_features,omitempty"`
	TotalMemory uint64   `json:"total_memory"`

	CalibratedAt    time.Time `json:"calibrated_at"`
	CalibrationTime string    `json:"calibration_time,omitempty"`

	Budget      time.Duration         `json:"budget"`
	Calibration Strategy              `json:"calibration"`
	Selection   string                `json:"selection"`
	Variant     params.Variant        `json:"variant"`
	Parameters  params.CostParameters `json:"parameters"`
	Samples     Series                `json:"samples,omitempty"`
}

// NewProfile returns a profile fingerprinting the current machine.
func NewProfile() *Profile {
	return &Profile{
		ProfileVersion: CurrentProfileVersion,
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
		CPUFeatures:    cpuFeatures(),
		TotalMemory:    sysmon.Detect().TotalMemory,
		CalibratedAt:   time.Now(),
	}
}

// cpuFeatures lists the SIMD extensions relevant to the BLAKE2b rounds inside
// Argon2. Different flags mean different timings.
func cpuFeatures() []string {
	var features []string
	add := func(name string, ok bool) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add("sse2", cpu.X86.HasSSE2)
		add("sse41", cpu.X86.HasSSE41)
		add("avx", cpu.X86.HasAVX)
		add("avx2", cpu.X86.HasAVX2)
		add("avx512f", cpu.X86.HasAVX512F)
	case "arm64":
		add("asimd", cpu.ARM64.HasASIMD)
		add("sha512", cpu.ARM64.HasSHA512)
	}
	return features
}

// GetDefaultProfilePath returns ~/.argontune_profile.json, or the file name
// alone when the home directory cannot be resolved.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

// SaveProfile writes the profile as indented JSON.
func (p *Profile) SaveProfile(path string) error {
	if path == "" {
		path = GetDefaultProfilePath()
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// LoadProfile reads a profile from path.
func LoadProfile(path string) (*Profile, error) {
	return loadProfile(path)
}

func loadProfile(path string) (*Profile, error) {
	if path == "" {
		path = GetDefaultProfilePath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &p, nil
}

// LoadOrCreateProfile loads the profile at path when it exists and is valid
// for this machine. Otherwise it returns a fresh profile and false.
func LoadOrCreateProfile(path string) (*Profile, bool) {
	p, err := loadProfile(path)
	if err != nil || !p.IsValid() {
		return NewProfile(), false
	}
	return p, true
}

// IsValid reports whether the profile was produced on hardware matching the
// current machine.
func (p *Profile) IsValid() bool {
	if p == nil || p.ProfileVersion != CurrentProfileVersion {
		return false
	}
	return p.NumCPU == runtime.NumCPU() &&
		p.GOARCH == runtime.GOARCH &&
		p.GOOS == runtime.GOOS &&
		p.WordSize == 32<<(^uint(0)>>63) &&
		strings.Join(p.CPUFeatures, ",") == strings.Join(cpuFeatures(), ",")
}

// IsStale reports whether the profile is older than maxAge.
func (p *Profile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

// Matches reports whether the profile answers the given tuning request.
func (p *Profile) Matches(budget time.Duration, cal Strategy, sel string, v params.Variant) bool {
	if p == nil || p.Parameters.TimeCost == 0 {
		return false
	}
	return p.Budget == budget && p.Calibration == cal && p.Selection == sel && p.Variant == v
}

// Record stores the outcome of a tuning request in the profile.
func (p *Profile) Record(budget time.Duration, cal Strategy, sel string, chosen params.CostParameters, samples Series, took time.Duration) {
	p.Budget = budget
	p.Calibration = cal
	p.Selection = sel
	p.Variant = chosen.Variant
	p.Parameters = chosen
	p.Samples = samples
	p.CalibratedAt = time.Now()
	p.CalibrationTime = took.Round(time.Millisecond).String()
}

func (p *Profile) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Calibration Profile (v%d)\n", p.ProfileVersion)
	fmt.Fprintf(&sb, "  Hardware: %d CPUs, %s/%s, %d-bit, %s\n", p.NumCPU, p.GOOS, p.GOARCH, p.WordSize, p.GoVersion)
	if len(p.CPUFeatures) > 0 {
		fmt.Fprintf(&sb, "  CPU features: %s\n", strings.Join(p.CPUFeatures, " "))
	}
	fmt.Fprintf(&sb, "  Calibrated: %s", p.CalibratedAt.Format(time.RFC3339))
	if p.CalibrationTime != "" {
		fmt.Fprintf(&sb, " (took %s)", p.CalibrationTime)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  Request: budget=%s calibration=%s selection=%s\n", p.Budget, p.Calibration, p.Selection)
	fmt.Fprintf(&sb, "  Parameters: %s\n", p.Parameters)
	return sb.String()
}
