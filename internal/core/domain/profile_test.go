package domain

import "testing"

func completeBase() *Profile {
	return &Profile{
		Name:    "Ama Mensah",
		Phone:   "+233200000000",
		Address: "12 Ring Road",
		City:    "Accra",
		State:   "Greater Accra",
		Country: "GH",
		ZipCode: "00233",
	}
}

func completeSeller() *SellerProfile {
	return &SellerProfile{
		BusinessName:        "Kente House",
		BusinessDescription: "Handwoven textiles",
		BusinessAddress:     "4 Market St",
		BusinessCity:        "Kumasi",
		BusinessState:       "Ashanti",
		BusinessCountry:     "GH",
		BusinessZipCode:     "00233",
		BusinessPhone:       "+233200000001",
		BusinessEmail:       "shop@kente.example",
	}
}

func completeAffiliate() *AffiliateProfile {
	return &AffiliateProfile{Website: "https://blog.example", Niche: "fashion", SocialMedia: "@ama"}
}

func TestIsProfileComplete_NilUser(t *testing.T) {
	if IsProfileComplete(nil) {
		t.Fatalf("expected nil user to be incomplete")
	}
}

func TestIsProfileComplete_BaseProfileRequiredForEveryRole(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleSeller, RoleAffiliate, RoleCustomer} {
		u := &User{Role: role, SellerProfile: completeSeller(), AffiliateProfile: completeAffiliate()}
		if IsProfileComplete(u) {
			t.Errorf("%s: expected incomplete without base profile", role)
		}
	}
}

func TestIsProfileComplete_AdminAndCustomerOnlyNeedBase(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleCustomer} {
		u := &User{Role: role, Profile: completeBase()}
		if !IsProfileComplete(u) {
			t.Errorf("%s: expected complete with base profile only", role)
		}
		u.Profile.City = ""
		if IsProfileComplete(u) {
			t.Errorf("%s: expected incomplete with missing city", role)
		}
	}
}

func TestIsProfileComplete_SellerFieldsFlipResult(t *testing.T) {
	fields := []func(*SellerProfile){
		func(p *SellerProfile) { p.BusinessName = "" },
		func(p *SellerProfile) { p.BusinessDescription = "" },
		func(p *SellerProfile) { p.BusinessAddress = "" },
		func(p *SellerProfile) { p.BusinessCity = "" },
		func(p *SellerProfile) { p.BusinessState = "" },
		func(p *SellerProfile) { p.BusinessCountry = "" },
		func(p *SellerProfile) { p.BusinessZipCode = "" },
		func(p *SellerProfile) { p.BusinessPhone = "" },
		func(p *SellerProfile) { p.BusinessEmail = "" },
	}
	for i, clear := range fields {
		sp := completeSeller()
		clear(sp)
		u := &User{Role: RoleSeller, Profile: completeBase(), SellerProfile: sp}
		if IsProfileComplete(u) {
			t.Errorf("field %d: expected incomplete seller", i)
		}
		u.SellerProfile = completeSeller()
		if !IsProfileComplete(u) {
			t.Errorf("field %d: restoring the field should complete the profile", i)
		}
	}

	if IsProfileComplete(&User{Role: RoleSeller, Profile: completeBase()}) {
		t.Fatalf("expected seller without seller_profile to be incomplete")
	}
}

func TestIsProfileComplete_AffiliateFieldsFlipResult(t *testing.T) {
	fields := []func(*AffiliateProfile){
		func(p *AffiliateProfile) { p.Website = "" },
		func(p *AffiliateProfile) { p.Niche = "" },
		func(p *AffiliateProfile) { p.SocialMedia = "" },
	}
	for i, clear := range fields {
		ap := completeAffiliate()
		clear(ap)
		u := &User{Role: RoleAffiliate, Profile: completeBase(), AffiliateProfile: ap}
		if IsProfileComplete(u) {
			t.Errorf("field %d: expected incomplete affiliate", i)
		}
		u.AffiliateProfile = completeAffiliate()
		if !IsProfileComplete(u) {
			t.Errorf("field %d: restoring the field should complete the profile", i)
		}
	}
}

func TestIsProfileComplete_UnknownRoleFailsClosed(t *testing.T) {
	for _, role := range []Role{RoleUnknown, RoleGuest} {
		u := &User{Role: role, Profile: completeBase()}
		if IsProfileComplete(u) {
			t.Errorf("%s: expected incomplete", role)
		}
	}
}
