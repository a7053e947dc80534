package handler

import (
	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Session ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User            *domain.User `json:"user"`
	Redirect        string       `json:"redirect"`
	ProfileComplete bool         `json:"profile_complete"`
}

type logoutResponse struct {
	Redirect string `json:"redirect"`
}

type signupRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"     validate:"required,max=120"`
	Role     string `json:"role"     validate:"required,role_name"`
}

type signupResponse struct {
	Success bool `json:"success"`
}

type sessionResponse struct {
	Authenticated   bool         `json:"authenticated"`
	User            *domain.User `json:"user,omitempty"`
	Provisional     bool         `json:"provisional"`
	Stale           bool         `json:"stale"`
	ProfileComplete bool         `json:"profile_complete"`
}

func newSessionResponse(id domain.Identity) sessionResponse {
	user := id.User()
	return sessionResponse{
		Authenticated:   id.Authenticated(),
		User:            user,
		Provisional:     id.Provisional,
		Stale:           id.Stale,
		ProfileComplete: user != nil && domain.IsProfileComplete(user),
	}
}

// --- Profile ---

type profileRequest struct {
	Name    string `json:"name"     validate:"omitempty,max=120"`
	Bio     string `json:"bio"      validate:"omitempty,max=2000"`
	Avatar  string `json:"avatar"   validate:"omitempty,url"`
	Phone   string `json:"phone"    validate:"omitempty,max=40"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zip_code"`
}

type sellerProfileRequest struct {
	BusinessName        string `json:"business_name"`
	BusinessDescription string `json:"business_description"`
	BusinessLogo        string `json:"business_logo"    validate:"omitempty,url"`
	BusinessEmail       string `json:"business_email"   validate:"omitempty,email"`
	BusinessPhone       string `json:"business_phone"`
	BusinessAddress     string `json:"business_address"`
	BusinessCity        string `json:"business_city"`
	BusinessState       string `json:"business_state"`
	BusinessCountry     string `json:"business_country"`
	BusinessZipCode     string `json:"business_zip_code"`
	BusinessWebsite     string `json:"business_website" validate:"omitempty,url"`
	TaxID               string `json:"tax_id"`
}

type affiliateProfileRequest struct {
	Website      string `json:"website"       validate:"omitempty,url"`
	Niche        string `json:"niche"`
	SocialMedia  string `json:"social_media"`
	AudienceSize int    `json:"audience_size" validate:"gte=0"`
	PaypalEmail  string `json:"paypal_email"  validate:"omitempty,email"`
	BankAccount  string `json:"bank_account"`
}

type updateProfileRequest struct {
	Profile          *profileRequest          `json:"profile"`
	SellerProfile    *sellerProfileRequest    `json:"seller_profile"`
	AffiliateProfile *affiliateProfileRequest `json:"affiliate_profile"`
}

func (r updateProfileRequest) toPort() ports.ProfileUpdate {
	var out ports.ProfileUpdate
	if p := r.Profile; p != nil {
		out.Profile = &domain.Profile{
			Name:    p.Name,
			Bio:     p.Bio,
			Avatar:  p.Avatar,
			Phone:   p.Phone,
			Address: p.Address,
			City:    p.City,
			State:   p.State,
			Country: p.Country,
			ZipCode: p.ZipCode,
		}
	}
	if s := r.SellerProfile; s != nil {
		out.SellerProfile = &domain.SellerProfile{
			BusinessName:        s.BusinessName,
			BusinessDescription: s.BusinessDescription,
			BusinessLogo:        s.BusinessLogo,
			BusinessEmail:       s.BusinessEmail,
			BusinessPhone:       s.BusinessPhone,
			BusinessAddress:     s.BusinessAddress,
			BusinessCity:        s.BusinessCity,
			BusinessState:       s.BusinessState,
			BusinessCountry:     s.BusinessCountry,
			BusinessZipCode:     s.BusinessZipCode,
			BusinessWebsite:     s.BusinessWebsite,
			TaxID:               s.TaxID,
		}
	}
	if a := r.AffiliateProfile; a != nil {
		out.AffiliateProfile = &domain.AffiliateProfile{
			Website:      a.Website,
			Niche:        a.Niche,
			SocialMedia:  a.SocialMedia,
			AudienceSize: a.AudienceSize,
			PaypalEmail:  a.PaypalEmail,
			BankAccount:  a.BankAccount,
		}
	}
	return out
}

type profileResponse struct {
	User            *domain.User `json:"user"`
	ProfileComplete bool         `json:"profile_complete"`
}

// --- Cart ---

type addItemRequest struct {
	ProductID   string  `json:"product_id"   validate:"required"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"        validate:"gte=0"`
	Quantity    int     `json:"quantity"     validate:"required,gte=1"`
	Image       string  `json:"image"`
	AffiliateID string  `json:"affiliate_id"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

type cartResponse struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

func newCartResponse(s domain.CartState) cartResponse {
	items := s.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return cartResponse{Items: items, Total: s.Total, Count: count}
}

// --- Affiliate ---

type trackRequest struct {
	Code string `json:"code" validate:"required,max=128"`
}

// trackResponse carries the attributed product; it is empty for a repeat
// click or a code that names no product.
type trackResponse struct {
	ProductID string `json:"product_id,omitempty"`
}

// --- Notices ---

type noticesResponse struct {
	Notices []domain.Notice `json:"notices"`
}
