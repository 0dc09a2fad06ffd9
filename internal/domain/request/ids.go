package request

import (
	"fmt"
	"strconv"
	"strings"
)

const idFloor = 1000

// NextID generates the next case id. It strips non-digit characters from
// every existing id, takes the maximum numeric suffix with a floor of 1000,
// and formats the successor as REQ-<n>. Ids outside the REQ-<digits>
// convention contribute whatever digits they carry; ids with no digits
// count as zero.
func NextID(existing []string) string {
	maxSuffix := idFloor
	for _, id := range existing {
		if n := numericSuffix(id); n > maxSuffix {
			maxSuffix = n
		}
	}
	return fmt.Sprintf("REQ-%d", maxSuffix+1)
}

func numericSuffix(id string) int {
	var digits strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}
