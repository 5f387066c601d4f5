package settings

// Setting keys and defaults.
const (
	// SiteNameKey is the terminal display name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback terminal display name.
	DefaultSiteName = "CASHCLEAR Pro"
	// VoucherValidityDaysKey overrides the configured voucher validity in days.
	VoucherValidityDaysKey = "VOUCHER_VALIDITY_DAYS"
	// CodePrefixKey overrides the configured P-Code prefix.
	CodePrefixKey = "CODE_PREFIX"
	// BreakGlassSecretKey holds the current break-glass TOTP secret.
	BreakGlassSecretKey = "BREAK_GLASS_TOTP_SECRET"
	// BreakGlassLastStepKey holds the TOTP step of the last accepted break-glass code.
	BreakGlassLastStepKey = "BREAK_GLASS_LAST_STEP"
)

// adminEditable lists keys administrators may change through the API. The break-glass
// secret is rotated through its own procedure only.
var adminEditable = map[string]struct{}{
	SiteNameKey:            {},
	VoucherValidityDaysKey: {},
	CodePrefixKey:          {},
}

// IsAdminEditable reports whether key may be set through the admin API.
func IsAdminEditable(key string) bool {
	_, ok := adminEditable[key]
	return ok
}

// IsSecret reports whether key must never be returned by listings.
func IsSecret(key string) bool {
	return key == BreakGlassSecretKey || key == BreakGlassLastStepKey
}
