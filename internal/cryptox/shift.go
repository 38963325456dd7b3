package cryptox

// shiftOffset is the code point offset used by the legacy chat encoding.
const shiftOffset = 3

// ShiftEncode moves every code point of s forward by three. It provides no
// confidentiality and exists only to read and write rows created by older
// deployments.
func ShiftEncode(s string) string {
	return shift(s, shiftOffset)
}

// ShiftDecode reverses ShiftEncode. The empty string decodes to itself.
func ShiftDecode(s string) string {
	return shift(s, -shiftOffset)
}

func shift(s string, by rune) string {
	if s == "" {
		return ""
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, r+by)
	}
	return string(out)
}
