package capture

import (
	"context"
	"errors"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/konvohq/konvo/internal/i18n"
)

// ResultCode classifies why microphone access was refused.
type ResultCode string

const (
	CodeGranted     ResultCode = ""
	CodeDenied      ResultCode = "denied"
	CodeNoDevice    ResultCode = "no-device"
	CodeUnsupported ResultCode = "unsupported"
	CodeInsecure    ResultCode = "insecure"
	CodeUnknown     ResultCode = "unknown"
)

// PermissionResult carries the outcome of access negotiation together with a
// localized, user-presentable message. Negotiation never returns an error;
// every failure mode maps to a code.
type PermissionResult struct {
	Granted bool
	Code    ResultCode
	Message string
}

// RequestAccess checks that the platform supports capture, that the backend
// origin satisfies strict-platform requirements, and that a capture stream
// can actually be acquired. The trial stream is released immediately; the
// caller acquires its own stream when recording starts.
func RequestAccess(ctx context.Context, support Support, serverURL string, engine Engine, cfg Config) PermissionResult {
	if !support.Supported {
		return PermissionResult{
			Code:    CodeUnsupported,
			Message: i18n.T("permission.unsupported", "Audio recording is not supported on this system."),
		}
	}

	if support.Strict && !secureOrigin(serverURL) {
		return PermissionResult{
			Code:    CodeInsecure,
			Message: i18n.T("permission.insecure", "Microphone access requires a secure (HTTPS or localhost) backend address."),
		}
	}

	if err := engine.Available(ctx); err != nil {
		return classifyAcquisitionError(err)
	}

	// Trial acquisition: open a stream and release it right away so the
	// OS-level prompt (where one exists) fires before the first recording.
	trialCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	chunkCh, errCh, err := engine.Start(trialCtx, cfg)
	if err != nil {
		return classifyAcquisitionError(err)
	}
	_ = engine.Stop()
	drain(chunkCh, errCh)

	return PermissionResult{
		Granted: true,
		Message: i18n.T("permission.granted", "Microphone access granted."),
	}
}

func drain(chunkCh <-chan Chunk, errCh <-chan error) {
	for chunkCh != nil || errCh != nil {
		select {
		case _, ok := <-chunkCh:
			if !ok {
				chunkCh = nil
			}
		case _, ok := <-errCh:
			if !ok {
				errCh = nil
			}
		case <-time.After(2 * time.Second):
			return
		}
	}
}

func secureOrigin(serverURL string) bool {
	u, err := url.Parse(serverURL)
	if err != nil {
		return false
	}
	if u.Scheme == "https" {
		return true
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1" ||
		strings.HasPrefix(host, "127.")
}

func classifyAcquisitionError(err error) PermissionResult {
	msg := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, exec.ErrNotFound):
		return PermissionResult{
			Code:    CodeUnsupported,
			Message: i18n.T("permission.unsupported", "Audio recording is not supported on this system."),
		}
	case strings.Contains(msg, "permission denied") || strings.Contains(msg, "access denied"):
		return PermissionResult{
			Code:    CodeDenied,
			Message: i18n.T("permission.denied", "Microphone access was denied. Check your system audio permissions."),
		}
	case strings.Contains(msg, "no such device") || strings.Contains(msg, "device not found") ||
		strings.Contains(msg, "no device"):
		return PermissionResult{
			Code:    CodeNoDevice,
			Message: i18n.T("permission.no_device", "No microphone was found. Connect a microphone and try again."),
		}
	default:
		return PermissionResult{
			Code:    CodeUnknown,
			Message: i18n.T("permission.unknown", "Could not access the microphone: ") + err.Error(),
		}
	}
}
