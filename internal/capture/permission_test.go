package capture

import (
	"context"
	"errors"
	"testing"
)

func TestRequestAccess_UnsupportedPlatform(t *testing.T) {
	support := Support{Supported: false}
	res := RequestAccess(context.Background(), support, "http://localhost:3001", newFakeEngine(), DefaultConfig())
	if res.Granted {
		t.Errorf("access granted on unsupported platform")
	}
	if res.Code != CodeUnsupported {
		t.Errorf("code = %s, want unsupported", res.Code)
	}
	if res.Message == "" {
		t.Errorf("result must carry a user-presentable message")
	}
}

func TestRequestAccess_StrictPlatformRequiresSecureOrigin(t *testing.T) {
	support := Support{Supported: true, Strict: true}

	res := RequestAccess(context.Background(), support, "http://backend.example.com", newFakeEngine(), DefaultConfig())
	if res.Code != CodeInsecure {
		t.Errorf("code = %s, want insecure for remote http origin", res.Code)
	}

	res = RequestAccess(context.Background(), support, "http://localhost:3001", newFakeEngine(), DefaultConfig())
	if !res.Granted {
		t.Errorf("loopback http origin must satisfy the strict platform: %+v", res)
	}

	res = RequestAccess(context.Background(), support, "https://backend.example.com", newFakeEngine(), DefaultConfig())
	if !res.Granted {
		t.Errorf("https origin must satisfy the strict platform: %+v", res)
	}
}

func TestRequestAccess_TrialAcquisitionReleased(t *testing.T) {
	engine := newFakeEngine()
	support := Support{Supported: true}

	res := RequestAccess(context.Background(), support, "http://localhost:3001", engine, DefaultConfig())
	if !res.Granted {
		t.Fatalf("access not granted: %+v", res)
	}
	if engine.Recording() {
		t.Errorf("trial stream must be released after negotiation")
	}
}

func TestRequestAccess_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ResultCode
	}{
		{"denied", errors.New("open stream: permission denied"), CodeDenied},
		{"no device", errors.New("no such device"), CodeNoDevice},
		{"unknown", errors.New("stream exploded"), CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newFakeEngine()
			engine.availErr = tt.err
			res := RequestAccess(context.Background(), Support{Supported: true}, "http://localhost:3001", engine, DefaultConfig())
			if res.Granted {
				t.Errorf("access granted despite %v", tt.err)
			}
			if res.Code != tt.want {
				t.Errorf("code = %s, want %s", res.Code, tt.want)
			}
		})
	}
}

func TestProbe_RequiresEngineRecorder(t *testing.T) {
	orig := lookPath
	defer func() { lookPath = orig }()

	// ALSA tooling alone is not enough: capture runs through pw-record.
	lookPath = func(bin string) (string, error) {
		if bin == "arecord" || bin == "parec" || bin == "aplay" {
			return "/usr/bin/" + bin, nil
		}
		return "", errors.New("not found")
	}

	s := Probe()
	if s.HasRecorder {
		t.Errorf("HasRecorder = true without pw-record installed")
	}
	if s.Supported {
		t.Errorf("Supported = true on a machine the engine cannot record on")
	}
	if s.Reason == "" {
		t.Errorf("missing capability reason")
	}
}

func TestProbe_Idempotent(t *testing.T) {
	orig := lookPath
	defer func() { lookPath = orig }()
	lookPath = func(bin string) (string, error) {
		if bin == "pw-record" || bin == "aplay" || bin == "pw-play" {
			return "/usr/bin/" + bin, nil
		}
		return "", errors.New("not found")
	}

	first := Probe()
	second := Probe()
	if first != second {
		t.Errorf("Probe() is not idempotent: %+v vs %+v", first, second)
	}
	if !first.HasRecorder {
		t.Errorf("recorder should be detected")
	}
}
