package devenv

import "strings"

// DeviceInfo carries the build properties used to fingerprint a device.
type DeviceInfo struct {
	Fingerprint  string `json:"fingerprint,omitempty"`
	Model        string `json:"model,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Hardware     string `json:"hardware,omitempty"`
	Product      string `json:"product,omitempty"`
	Board        string `json:"board,omitempty"`
	Bootloader   string `json:"bootloader,omitempty"`
	Serial       string `json:"serial,omitempty"`
	Brand        string `json:"brand,omitempty"`
	Device       string `json:"device,omitempty"`
}

var (
	fingerprintPrefixes = []string{"generic", "unknown"}
	modelMarkers        = []string{"google_sdk", "Emulator", "Android SDK built for x86"}
	hardwareMarkers     = []string{"goldfish", "ranchu", "vbox86"}
	productMarkers      = []string{"sdk", "google_sdk", "sdk_google", "sdk_x86", "vbox86p", "emulator", "simulator"}
)

// IsEmulator reports whether info matches a known emulator signature.
func IsEmulator(info DeviceInfo) bool {
	for _, p := range fingerprintPrefixes {
		if strings.HasPrefix(info.Fingerprint, p) {
			return true
		}
	}
	if containsAny(info.Model, modelMarkers) || strings.Contains(strings.ToLower(info.Model), "droid4x") {
		return true
	}
	if strings.Contains(info.Manufacturer, "Genymotion") {
		return true
	}
	if containsAny(info.Hardware, hardwareMarkers) || containsAny(info.Product, productMarkers) {
		return true
	}

	// Nox player
	for _, v := range []string{info.Board, info.Bootloader, info.Hardware, info.Product, info.Serial} {
		if strings.Contains(strings.ToLower(v), "nox") {
			return true
		}
	}

	return strings.HasPrefix(info.Brand, "generic") && strings.HasPrefix(info.Device, "generic")
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
