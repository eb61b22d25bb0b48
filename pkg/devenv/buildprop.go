package devenv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadDeviceInfo reads an Android build.prop file.
func LoadDeviceInfo(path string) (DeviceInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return DeviceInfo{}, err
	}
	defer f.Close()

	info, err := ParseBuildProp(f)
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return info, nil
}

// ParseBuildProp parses key=value build properties. Blank lines and lines
// starting with # are ignored; unknown keys are skipped.
func ParseBuildProp(r io.Reader) (DeviceInfo, error) {
	var info DeviceInfo
	fields := map[string]*string{
		"ro.build.fingerprint":    &info.Fingerprint,
		"ro.product.model":        &info.Model,
		"ro.product.manufacturer": &info.Manufacturer,
		"ro.hardware":             &info.Hardware,
		"ro.product.name":         &info.Product,
		"ro.product.board":        &info.Board,
		"ro.bootloader":           &info.Bootloader,
		"ro.serialno":             &info.Serial,
		"ro.product.brand":        &info.Brand,
		"ro.product.device":       &info.Device,
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if dst, found := fields[strings.TrimSpace(key)]; found {
			*dst = strings.TrimSpace(value)
		}
	}
	return info, sc.Err()
}
