package format

import "fmt"

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// FormatBytes renders b with a binary unit, e.g. "64 MiB" or "1.5 GiB".
func FormatBytes(b uint64) string {
	if b < 1024 {
		return fmt.Sprintf("%d B", b)
	}
	v := float64(b)
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}
	if v == float64(uint64(v)) {
		return fmt.Sprintf("%d %s", uint64(v), byteUnits[unit])
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[unit])
}

// FormatKiB renders a memory size given in KiB.
func FormatKiB(kib uint64) string {
	return FormatBytes(kib * 1024)
}
