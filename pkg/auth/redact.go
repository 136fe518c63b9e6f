package auth

// maskShowChars is how many leading characters survive masking.
const maskShowChars = 6

// MaskToken partially masks token material for logs and CLI output. Short
// values are fully masked. This is the only form in which token material
// may appear outside the session store.
func MaskToken(value string) string {
	if len(value) <= maskShowChars {
		return "***"
	}
	return value[:maskShowChars] + "***"
}
