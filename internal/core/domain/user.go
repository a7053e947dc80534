package domain

// Profile holds the base contact details every role must fill in.
type Profile struct {
	Name    string `json:"name,omitempty"`
	Bio     string `json:"bio,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
}

// SellerProfile is the business sub-profile carried by sellers.
type SellerProfile struct {
	BusinessName        string  `json:"business_name,omitempty"`
	BusinessDescription string  `json:"business_description,omitempty"`
	BusinessLogo        string  `json:"business_logo,omitempty"`
	BusinessEmail       string  `json:"business_email,omitempty"`
	BusinessPhone       string  `json:"business_phone,omitempty"`
	BusinessAddress     string  `json:"business_address,omitempty"`
	BusinessCity        string  `json:"business_city,omitempty"`
	BusinessState       string  `json:"business_state,omitempty"`
	BusinessCountry     string  `json:"business_country,omitempty"`
	BusinessZipCode     string  `json:"business_zip_code,omitempty"`
	BusinessWebsite     string  `json:"business_website,omitempty"`
	TaxID               string  `json:"tax_id,omitempty"`
	CommissionRate      float64 `json:"commission_rate,omitempty"`
	IsVerified          bool    `json:"is_verified,omitempty"`
}

// AffiliateProfile is the marketing sub-profile carried by affiliates.
type AffiliateProfile struct {
	Website        string  `json:"website,omitempty"`
	Niche          string  `json:"niche,omitempty"`
	SocialMedia    string  `json:"social_media,omitempty"`
	AudienceSize   int     `json:"audience_size,omitempty"`
	PaypalEmail    string  `json:"paypal_email,omitempty"`
	BankAccount    string  `json:"bank_account,omitempty"`
	CommissionRate float64 `json:"commission_rate,omitempty"`
	IsVerified     bool    `json:"is_verified,omitempty"`
}

// User is the storefront account as served by the backend. It is never
// mutated locally; only a backend response replaces it.
type User struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	Role             Role              `json:"role"`
	IsEmailVerified  bool              `json:"is_email_verified"`
	Profile          *Profile          `json:"profile,omitempty"`
	SellerProfile    *SellerProfile    `json:"seller_profile,omitempty"`
	AffiliateProfile *AffiliateProfile `json:"affiliate_profile,omitempty"`
	// Timestamps are kept verbatim; the backend emits naive ISO-8601.
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// DisplayName prefers the profile name and falls back to the email.
func (u *User) DisplayName() string {
	if u.Profile != nil && u.Profile.Name != "" {
		return u.Profile.Name
	}
	return u.Email
}

// Validate checks that any role-specific sub-profile matches the role.
func (u *User) Validate() error {
	if u.SellerProfile != nil && u.Role != RoleSeller {
		return ErrRoleMismatch
	}
	if u.AffiliateProfile != nil && u.Role != RoleAffiliate {
		return ErrRoleMismatch
	}
	return nil
}

// Session pairs a bearer token with the user it authenticates. A Session
// with an empty token is no session at all, whatever User holds.
type Session struct {
	Token string
	User  *User
}

// Valid reports whether the session carries both a token and a user.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// Identity is what the Identity Resolver hands to the rest of the core.
type Identity struct {
	Session *Session
	// Provisional is set when the user comes from the credential cache and
	// has not been confirmed by the backend in this call.
	Provisional bool
	// Stale is set when the backend could not confirm the user and the
	// cached copy was kept instead.
	Stale bool
}

// User returns the identified user, or nil when anonymous.
func (i Identity) User() *User {
	if i.Session == nil {
		return nil
	}
	return i.Session.User
}

// Authenticated reports whether both a token and a user are present.
func (i Identity) Authenticated() bool {
	return i.Session.Valid()
}
