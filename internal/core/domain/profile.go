package domain

// IsProfileComplete reports whether every field the user's role requires is
// filled in. It is pure and must be re-evaluated whenever the user changes.
func IsProfileComplete(u *User) bool {
	if u == nil || !baseProfileComplete(u.Profile) {
		return false
	}

	switch u.Role {
	case RoleSeller:
		return sellerProfileComplete(u.SellerProfile)
	case RoleAffiliate:
		return affiliateProfileComplete(u.AffiliateProfile)
	case RoleAdmin, RoleCustomer:
		return true
	default:
		return false
	}
}

func baseProfileComplete(p *Profile) bool {
	return p != nil && allSet(
		p.Name,
		p.Phone,
		p.Address,
		p.City,
		p.State,
		p.Country,
		p.ZipCode,
	)
}

func sellerProfileComplete(p *SellerProfile) bool {
	return p != nil && allSet(
		p.BusinessName,
		p.BusinessDescription,
		p.BusinessAddress,
		p.BusinessCity,
		p.BusinessState,
		p.BusinessCountry,
		p.BusinessZipCode,
		p.BusinessPhone,
		p.BusinessEmail,
	)
}

func affiliateProfileComplete(p *AffiliateProfile) bool {
	return p != nil && allSet(p.Website, p.Niche, p.SocialMedia)
}

func allSet(fields ...string) bool {
	for _, f := range fields {
		if f == "" {
			return false
		}
	}
	return true
}
