package transfer

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// HumanReadableSize formats a byte count the way the original tool does:
// divide by 1024 until it settles under 1024, three decimal places, a
// space before the unit. HumanReadableSize(1024^k) == "1.000 " + unit.
func HumanReadableSize(size int64) string {
	f := float64(size)
	i := 0
	for f >= 1024 && i < len(sizeUnits)-1 {
		f /= 1024
		i++
	}
	return fmt.Sprintf("%.3f %s", f, sizeUnits[i])
}
