package i18n

import (
	"sort"
	"sync"
)

// Catalog maps message keys to localized strings for one locale.
type Catalog map[string]string

var (
	mu      sync.RWMutex
	current = "en"
)

// catalogs is the master table of supported locales.
var catalogs = map[string]Catalog{
	"en": {
		"permission.granted":     "Microphone access granted.",
		"permission.denied":      "Microphone access was denied. Allow it in your system settings.",
		"permission.no_device":   "No microphone found. Check that one is connected.",
		"permission.unsupported": "Voice recording is not supported on this system.",
		"permission.insecure":    "A secure (https) server connection is required on this platform.",
		"permission.unknown":     "Something went wrong while requesting microphone access.",
		"capture.init_failed":    "Could not initialize recording.",
		"capture.started":        "Recording started...",
		"capture.stopped":        "Recording stopped.",
		"capture.timeout":        "Recording timeout reached.",
		"chat.help":              "Type a message, or /mic to speak, /play to hear the last reply, /quit to leave.",
		"submit.empty":           "Please enter a message.",
		"submit.failed":          "Failed to send the message.",
		"submit.started":         "Processing your message...",
		"message.completed":      "Response complete.",
		"message.failed":         "An error occurred while processing the message.",
		"session.load_failed":    "Failed to load the session.",
		"session.created":        "New session created.",
		"session.deleted":        "Session deleted.",
		"session.default_title":  "New conversation",
		"playback.failed":        "Audio playback failed.",
		"playback.none":          "No audio reply to play yet.",
		"auth.signed_out":        "Your session has expired. Please sign in again.",
	},
	"ko": {
		"permission.granted":     "마이크 권한이 허용되었습니다.",
		"permission.denied":      "마이크 권한이 거부되었습니다. 설정에서 권한을 허용해주세요.",
		"permission.no_device":   "마이크를 찾을 수 없습니다. 마이크가 연결되어 있는지 확인해주세요.",
		"permission.unsupported": "이 시스템에서는 음성 녹음을 지원하지 않습니다.",
		"permission.insecure":    "이 플랫폼에서는 HTTPS 연결이 필요합니다.",
		"permission.unknown":     "마이크 권한을 요청하는 중 오류가 발생했습니다.",
		"capture.init_failed":    "녹음 기능을 초기화할 수 없습니다.",
		"capture.started":        "녹음을 시작합니다...",
		"capture.stopped":        "녹음이 중지되었습니다.",
		"capture.timeout":        "녹음 제한 시간에 도달했습니다.",
		"chat.help":              "메시지를 입력하세요. /mic 말하기, /play 마지막 응답 듣기, /quit 종료.",
		"submit.empty":           "메시지를 입력해주세요.",
		"submit.failed":          "메시지 전송에 실패했습니다.",
		"submit.started":         "메시지 처리를 시작합니다...",
		"message.completed":      "응답이 완료되었습니다.",
		"message.failed":         "메시지 처리 중 오류가 발생했습니다.",
		"session.load_failed":    "세션을 불러오는데 실패했습니다.",
		"session.created":        "새로운 세션이 생성되었습니다.",
		"session.deleted":        "세션이 삭제되었습니다.",
		"session.default_title":  "새로운 대화",
		"playback.failed":        "오디오 재생에 실패했습니다.",
		"playback.none":          "재생할 음성 응답이 아직 없습니다.",
		"auth.signed_out":        "로그인이 만료되었습니다. 다시 로그인해주세요.",
	},
}

// SetLocale switches the active locale. Unknown codes are ignored.
func SetLocale(code string) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := catalogs[code]; ok {
		current = code
	}
}

// Locale returns the active locale code.
func Locale() string {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Locales returns all supported locale codes.
func Locales() []string {
	codes := make([]string, 0, len(catalogs))
	for code := range catalogs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IsValidLocale returns true if the code is a known locale.
func IsValidLocale(code string) bool {
	_, ok := catalogs[code]
	return ok
}

// T resolves a message key in the active locale. The fallback literal is
// returned when neither the active locale nor English carries the key.
func T(key, fallback string) string {
	mu.RLock()
	locale := current
	mu.RUnlock()

	if s, ok := catalogs[locale][key]; ok {
		return s
	}
	if s, ok := catalogs["en"][key]; ok {
		return s
	}
	return fallback
}
