package capture

import (
	"os/exec"
	"runtime"
	"strings"
)

// lookPath is swappable for tests.
var lookPath = exec.LookPath

// Support describes what audio tooling the current platform offers. Probing
// inspects installed binaries only and never touches a device, so it is
// side-effect free and safe to repeat.
type Support struct {
	Platform    string
	Recorder    string // usable capture binary, empty if none
	Player      string // first usable playback binary, empty if none
	HasRecorder bool
	HasPlayer   bool
	// Strict marks platforms that gate microphone access per application
	// and additionally require a secure backend origin.
	Strict    bool
	Supported bool
	Reason    string
}

// Capture runs through the PipeWire engine, so only pw-record counts as a
// usable recorder. Playback goes through any of the platform players.
var recorderBinaries = []string{"pw-record"}

var playerBinaries = map[string][]string{
	"linux":   {"pw-play", "aplay", "paplay", "ffplay", "mpg123"},
	"darwin":  {"afplay", "ffplay", "mpg123"},
	"windows": {"ffplay", "mpg123"},
}

// Probe detects the capture and playback capabilities of this machine.
func Probe() Support {
	platform := runtime.GOOS

	s := Support{
		Platform: platform,
		Strict:   platform == "darwin",
	}

	for _, bin := range recorderBinaries {
		if _, err := lookPath(bin); err == nil {
			s.Recorder = bin
			s.HasRecorder = true
			break
		}
	}

	players, ok := playerBinaries[platform]
	if !ok {
		players = playerBinaries["linux"]
	}
	for _, bin := range players {
		if _, err := lookPath(bin); err == nil {
			s.Player = bin
			s.HasPlayer = true
			break
		}
	}

	s.Supported = s.HasRecorder && s.HasPlayer
	switch {
	case !s.HasRecorder:
		s.Reason = "no audio capture backend found (tried " + strings.Join(recorderBinaries, ", ") + "; install pipewire-tools)"
	case !s.HasPlayer:
		s.Reason = "no audio playback backend found (tried " + strings.Join(players, ", ") + ")"
	}
	return s
}
